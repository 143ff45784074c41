package equipment

// importAliases maps normalised CSV headers, in Portuguese and English, to
// column names.
var importAliases = map[string]string{
	"EQUIPAMENTO": "description",
	"DESCRIÇÃO":   "description",
	"DESCRICAO":   "description",
	"DESCRIPTION": "description",

	"GARANTIA":     "warranty_date",
	"WARRANTY":     "warranty_date",
	"WARRANTYDATE": "warranty_date",

	"PATRIMONIO": "asset_tag",
	"PATRIMÔNIO": "asset_tag",
	"ASSETTAG":   "asset_tag",

	"SERIAL": "serial",

	"USUÁRIOATUAL":  "current_holder",
	"USUARIOATUAL":  "current_holder",
	"CURRENTHOLDER": "current_holder",
	"CURRENTUSER":   "current_holder",

	"USUÁRIOANTERIOR": "previous_holder",
	"USUARIOANTERIOR": "previous_holder",
	"PREVIOUSHOLDER":  "previous_holder",
	"PREVIOUSUSER":    "previous_holder",

	"LOCAL":    "site",
	"SITE":     "site",
	"LOCATION": "site",

	"SETOR":      "department",
	"DEPARTMENT": "department",

	"DATAENTREGAAOUSUÁRIO": "delivery_date",
	"DATAENTREGAAOUSUARIO": "delivery_date",
	"DELIVERYDATE":         "delivery_date",

	"STATUS": "status",

	"DATADEDEVOLUÇÃO": "return_date",
	"DATADEDEVOLUCAO": "return_date",
	"RETURNDATE":      "return_date",

	"TIPO":          "ownership_type",
	"TYPE":          "ownership_type",
	"OWNERSHIPTYPE": "ownership_type",

	"NOTADECOMPRA": "purchase_note",
	"PURCHASENOTE": "purchase_note",

	"TERMODERESPONSABILIDADE": "responsibility_term",
	"RESPONSIBILITYTERM":      "responsibility_term",

	"FOTO":     "photo_url",
	"PHOTO":    "photo_url",
	"PHOTOURL": "photo_url",

	"QRCODE": "qr_payload",

	"OBSERVAÇÕES": "notes",
	"OBSERVACOES": "notes",
	"NOTES":       "notes",
}
