package license

var importAliases = map[string]string{
	"PRODUTO": "product",
	"PRODUCT": "product",

	"TIPOLICENCA": "license_type",
	"TIPOLICENÇA": "license_type",
	"LICENSETYPE": "license_type",
	"TYPE":        "license_type",

	"CHAVESERIAL": "serial_key",
	"SERIALKEY":   "serial_key",
	"KEY":         "serial_key",

	"DATAEXPIRACAO":  "expiration_date",
	"DATAEXPIRAÇÃO":  "expiration_date",
	"EXPIRATIONDATE": "expiration_date",

	"USUARIO":      "assigned_user",
	"USUÁRIO":      "assigned_user",
	"ASSIGNEDUSER": "assigned_user",
	"USER":         "assigned_user",

	"CARGO":   "job_role",
	"JOBROLE": "job_role",
	"ROLE":    "job_role",

	"SETOR":      "department",
	"DEPARTMENT": "department",

	"GESTOR":  "manager",
	"MANAGER": "manager",

	"CENTROCUSTO":   "cost_center",
	"CENTRODECUSTO": "cost_center",
	"COSTCENTER":    "cost_center",

	"CONTARAZAO":    "ledger_account",
	"CONTARAZÃO":    "ledger_account",
	"LEDGERACCOUNT": "ledger_account",

	"NOMECOMPUTADOR": "computer_name",
	"COMPUTERNAME":   "computer_name",

	"NUMEROCHAMADO": "ticket_number",
	"NÚMEROCHAMADO": "ticket_number",
	"TICKETNUMBER":  "ticket_number",

	"OBSERVACOES": "notes",
	"OBSERVAÇÕES": "notes",
	"NOTES":       "notes",
}
