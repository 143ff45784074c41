package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/inventory-management/internal/user"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the bootstrap administrator",
	Long:  `Create the bootstrap administrator account when no administrator exists.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig()

		deps, err := initializeDependencies(cfg)
		if err != nil {
			log.Fatalf("failed to init dependencies: %v", err)
		}
		defer deps.Close()

		created, err := deps.UserService.EnsureBootstrapAdmin(context.Background())
		if err != nil {
			log.Fatalf("failed to seed bootstrap admin: %v", err)
		}
		if !created {
			fmt.Println("an administrator already exists; nothing to seed")
			return
		}
		fmt.Println("Seeded bootstrap admin:", user.BootstrapUsername)
	},
}
