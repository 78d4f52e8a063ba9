package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fernlea/loanledger/internal/infrastructure/config"
	"github.com/fernlea/loanledger/internal/infrastructure/logger"
	"github.com/fernlea/loanledger/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "loanledger-cli",
		Short: "Loan ledger CLI tool",
		Long:  `A command line interface for the loan ledger API and database migrations.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the loan ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(accountCmd())
	rootCmd.AddCommand(postCmd())
	rootCmd.AddCommand(rewardsCmd())
	rootCmd.AddCommand(accrualCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Loan account operations",
	}

	var ownerID, currency, creditLimit, openingBalance string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Open a loan account",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/accounts/", map[string]any{
				"owner_id":        ownerID,
				"currency":        currency,
				"credit_limit":    creditLimit,
				"opening_balance": openingBalance,
			})
		},
	}
	createCmd.Flags().StringVar(&ownerID, "owner", "", "Owner ID")
	createCmd.Flags().StringVar(&currency, "currency", "", "ISO 4217 currency code")
	createCmd.Flags().StringVar(&creditLimit, "limit", "0", "Credit limit")
	createCmd.Flags().StringVar(&openingBalance, "opening-balance", "0", "Opening balance")
	createCmd.MarkFlagRequired("owner")

	getCmd := &cobra.Command{
		Use:   "get <account-id>",
		Short: "Show a loan account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/accounts/"+args[0], nil)
		},
	}

	metricsCmd := &cobra.Command{
		Use:   "metrics <account-id>",
		Short: "Show derived account metrics",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/accounts/"+args[0]+"/metrics", nil)
		},
	}

	entriesCmd := &cobra.Command{
		Use:   "entries <account-id>",
		Short: "List an account's ledger entries",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/accounts/"+args[0]+"/entries", nil)
		},
	}

	cmd.AddCommand(createCmd, getCmd, metricsCmd, entriesCmd)
	return cmd
}

func postCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post ledger entries",
	}

	var amount, description string
	var isLateFee bool

	makePostCmd := func(use, short, path string) *cobra.Command {
		c := &cobra.Command{
			Use:   use + " <account-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				body := map[string]any{
					"amount":      amount,
					"description": description,
				}
				if isLateFee {
					body["is_late_fee"] = true
				}
				doRequest(http.MethodPost, "/api/v1/accounts/"+args[0]+"/"+path, body)
			},
		}
		c.Flags().StringVar(&amount, "amount", "", "Entry amount")
		c.Flags().StringVar(&description, "description", "", "Entry description")
		c.MarkFlagRequired("amount")
		return c
	}

	feeCmd := makePostCmd("fee", "Post a fee", "fees")
	feeCmd.Flags().BoolVar(&isLateFee, "late", false, "Mark as a late fee")

	cmd.AddCommand(
		makePostCmd("purchase", "Post a purchase", "purchases"),
		feeCmd,
		makePostCmd("repayment", "Post a repayment", "repayments"),
	)
	return cmd
}

func rewardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewards",
		Short: "Reward progress operations",
	}

	progressCmd := &cobra.Command{
		Use:   "progress <account-id>",
		Short: "Show progress toward the next APR step-down",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/accounts/"+args[0]+"/rewards", nil)
		},
	}

	historyCmd := &cobra.Command{
		Use:   "history <account-id>",
		Short: "List APR adjustments",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/accounts/"+args[0]+"/rewards/history", nil)
		},
	}

	cmd.AddCommand(progressCmd, historyCmd)
	return cmd
}

func accrualCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accrual",
		Short: "Interest accrual operations",
	}

	var date string
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run interest accrual for a date (default today)",
		Run: func(cmd *cobra.Command, args []string) {
			var body map[string]any
			if date != "" {
				body = map[string]any{"date": date}
			}
			doRequest(http.MethodPost, "/api/v1/accruals/run", body)
		},
	}
	runCmd.Flags().StringVar(&date, "date", "", "Accrual date (YYYY-MM-DD)")

	cmd.AddCommand(runCmd)
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration operations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console"})
			return postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log)
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console"})
			return postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath, log)
		},
	}

	cmd.AddCommand(upCmd, downCmd)
	return cmd
}

func doRequest(method, path string, body map[string]any) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(respBody))
		os.Exit(1)
	}

	var result any
	if err := json.Unmarshal(respBody, &result); err != nil {
		fmt.Println(string(respBody))
		return
	}
	printJSON(result)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to render response: %v\n", err)
		return
	}
	fmt.Println(string(data))
}
