package main

import (
	"fmt"
	"time"

	"github.com/chris/energy-vault/pkg/ledger"
	"github.com/chris/energy-vault/pkg/mapping"
	"github.com/chris/energy-vault/pkg/models"
	"github.com/spf13/cobra"
)

func vaultCommands(e func() *env) []*cobra.Command {
	customersCmd := &cobra.Command{
		Use:   "customers",
		Short: "List customers with a vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := e().ledger.ListCustomers(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ids)
		},
	}

	balanceCmd := &cobra.Command{
		Use:   "balance CUSTOMER_ID",
		Short: "Show a customer's available kWh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			balance, err := e().ledger.GetAvailableBalance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), balance.String())
			return nil
		},
	}

	vaultCmd := &cobra.Command{
		Use:   "vault CUSTOMER_ID",
		Short: "Show a customer's vault with its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := e().ledger.GetVault(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), mapping.ToApiVault(v))
		},
	}

	historyCmd := &cobra.Command{
		Use:   "history CUSTOMER_ID",
		Short: "Show a customer's transactions, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txs, err := e().ledger.GetTransactionHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), mapping.ToApiTransactions(txs))
		},
	}

	creditsCmd := &cobra.Command{
		Use:   "credits CUSTOMER_ID",
		Short: "List a customer's credits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			credits, err := e().ledger.ListCredits(cmd.Context(), args[0], models.CreditStatus(status))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), mapping.ToApiCredits(credits))
		},
	}
	creditsCmd.Flags().String("status", "", "Only credits in this status (active, consumed, expired)")

	issueCmd := &cobra.Command{
		Use:   "issue CUSTOMER_ID AMOUNT",
		Short: "Issue a credit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := ledger.ParseAmount("amount", args[1])
			if err != nil {
				return err
			}
			source, _ := cmd.Flags().GetString("source")
			description, _ := cmd.Flags().GetString("description")

			credit, err := e().ledger.IssueCredit(cmd.Context(), ledger.IssueRequest{
				CustomerID:  args[0],
				Amount:      amount,
				Source:      models.CreditSource(source),
				Description: description,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), mapping.ToApiCredit(credit))
		},
	}
	issueCmd.Flags().String("source", string(models.SourceSolarGeneration), "Credit source (solar_generation, purchase, compensation)")
	issueCmd.Flags().String("description", "", "Credit description")

	consumeCmd := &cobra.Command{
		Use:   "consume CUSTOMER_ID AMOUNT INVOICE_ID",
		Short: "Consume credits against an invoice",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := ledger.ParseAmount("amount", args[1])
			if err != nil {
				return err
			}
			res, err := e().ledger.ConsumeCredits(cmd.Context(), args[0], amount, args[2])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), mapping.ToApiConsumption(res))
		},
	}

	expireCmd := &cobra.Command{
		Use:   "expire",
		Short: "Expire active credits issued before a cutoff",
		Long:  `Expire active credits issued before --before, or before now minus CREDIT_TTL_DAYS when --before is omitted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			before, _ := cmd.Flags().GetString("before")
			customer, _ := cmd.Flags().GetString("customer")

			var cutoff time.Time
			if before != "" {
				t, err := time.Parse(time.RFC3339, before)
				if err != nil {
					return fmt.Errorf("invalid --before: %w", err)
				}
				cutoff = t
			} else {
				t, ok := e().cfg.ExpiryCutoff(time.Now().UTC())
				if !ok {
					return fmt.Errorf("credit expiry is disabled (CREDIT_TTL_DAYS=0); pass --before")
				}
				cutoff = t
			}

			if customer != "" {
				res, err := e().ledger.ExpireCredits(cmd.Context(), customer, cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "expired %d credits (%s kWh) for %s\n", len(res.Expired), res.Amount, customer)
				return nil
			}

			summary, err := e().ledger.ExpireAll(cmd.Context(), cutoff)
			fmt.Fprintf(cmd.OutOrStdout(), "expired %d credits (%s kWh) across %d customers\n", summary.Credits, summary.Amount, summary.Customers)
			return err
		},
	}
	expireCmd.Flags().String("before", "", "RFC3339 cutoff")
	expireCmd.Flags().String("customer", "", "Only this customer")

	verifyCmd := &cobra.Command{
		Use:   "verify [CUSTOMER_ID]",
		Short: "Check vault totals against the transaction log and credit set",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				report, err := e().ledger.Verify(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := printJSON(cmd.OutOrStdout(), mapping.ToApiVerification(report)); err != nil {
					return err
				}
				if !report.Consistent {
					return fmt.Errorf("vault %s is inconsistent", args[0])
				}
				return nil
			}

			summary, err := e().jobs.RunAudit(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "checked %d vaults, %d inconsistent\n", summary.Checked, len(summary.Inconsistent))
			if len(summary.Inconsistent) > 0 {
				return fmt.Errorf("inconsistent vaults: %v", summary.Inconsistent)
			}
			return nil
		},
	}

	return []*cobra.Command{customersCmd, balanceCmd, vaultCmd, historyCmd, creditsCmd, issueCmd, consumeCmd, expireCmd, verifyCmd}
}
