package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"resumeBuilder/internal/config"
	"resumeBuilder/internal/database"
	"resumeBuilder/internal/persistence"
	"resumeBuilder/internal/resume"
)

var resumesCmd = &cobra.Command{
	Use:   "resumes",
	Short: "列出某个用户保存的简历",
	RunE:  runResumes,
}

var (
	resumesOwner uint
	dbHost       string
	dbPort       int
	dbName       string
	dbUser       string
	dbPass       string
	dbSSLMode    string
)

func init() {
	resumesCmd.Flags().UintVar(&resumesOwner, "owner", 0, "用户 ID（必填）")
	resumesCmd.Flags().StringVar(&dbHost, "db-host", "", "数据库 Host（可选，默认读 DATABASE_HOST）")
	resumesCmd.Flags().IntVar(&dbPort, "db-port", 0, "数据库 Port（可选，默认读 DATABASE_PORT）")
	resumesCmd.Flags().StringVar(&dbName, "db-name", "", "数据库名（可选，默认读 POSTGRES_DB）")
	resumesCmd.Flags().StringVar(&dbUser, "db-user", "", "数据库用户（可选，默认读 POSTGRES_USER）")
	resumesCmd.Flags().StringVar(&dbPass, "db-password", "", "数据库密码（可选，默认读 POSTGRES_PASSWORD）")
	resumesCmd.Flags().StringVar(&dbSSLMode, "db-sslmode", "", "数据库 SSLMODE（可选，默认读 DATABASE_SSLMODE）")

	if err := resumesCmd.MarkFlagRequired("owner"); err != nil {
		panic(fmt.Sprintf("failed to mark owner flag as required: %v", err))
	}

	rootCmd.AddCommand(resumesCmd)
}

func runResumes(cmd *cobra.Command, _ []string) error {
	dbCfg, err := loadDatabaseConfig(dbHost, dbPort, dbName, dbUser, dbPass, dbSSLMode)
	if err != nil {
		return fmt.Errorf("load database config: %w", err)
	}

	db, err := database.InitDatabase(dbCfg)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}

	adapter := persistence.NewAdapter(persistence.NewGormStore(db))
	records, err := adapter.List(cmd.Context(), resumesOwner)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED\tTEMPLATE\tTHEME\tSTATUS")
	for _, rec := range records {
		status := "ok"
		var doc resume.Document
		if doc, err = persistence.LoadOne(rec); err != nil {
			status = "unreadable: " + err.Error()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			rec.ID, rec.Name, rec.CreatedAt.Format("2006-01-02 15:04"), doc.Template, doc.Theme, status)
	}
	return w.Flush()
}

func loadDatabaseConfig(host string, port int, name, user, password, sslmode string) (config.DatabaseConfig, error) {
	if strings.TrimSpace(host) == "" {
		host = os.Getenv("DATABASE_HOST")
	}
	if port <= 0 {
		if env := strings.TrimSpace(os.Getenv("DATABASE_PORT")); env != "" {
			p, err := strconv.Atoi(env)
			if err != nil {
				return config.DatabaseConfig{}, fmt.Errorf("parse DATABASE_PORT: %w", err)
			}
			port = p
		}
	}
	if strings.TrimSpace(name) == "" {
		name = os.Getenv("POSTGRES_DB")
	}
	if strings.TrimSpace(user) == "" {
		user = os.Getenv("POSTGRES_USER")
	}
	if strings.TrimSpace(password) == "" {
		password = os.Getenv("POSTGRES_PASSWORD")
	}
	if strings.TrimSpace(sslmode) == "" {
		sslmode = os.Getenv("DATABASE_SSLMODE")
	}

	if strings.TrimSpace(host) == "" {
		host = "localhost"
	}
	if port <= 0 {
		port = 5432
	}
	if strings.TrimSpace(sslmode) == "" {
		sslmode = "disable"
	}
	if strings.TrimSpace(name) == "" {
		return config.DatabaseConfig{}, errors.New("database name is required (POSTGRES_DB)")
	}
	if strings.TrimSpace(user) == "" {
		return config.DatabaseConfig{}, errors.New("database user is required (POSTGRES_USER)")
	}

	return config.DatabaseConfig{
		Host:     host,
		Port:     port,
		Name:     name,
		User:     user,
		Password: password,
		SSLMode:  sslmode,
	}, nil
}
