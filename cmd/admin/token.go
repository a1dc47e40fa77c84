package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"resumeBuilder/internal/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "签发开发用访问令牌",
	Long:  "用配置的 RSA 私钥为指定用户签发访问令牌。身份由外部服务负责，该命令只用于本地联调。",
	RunE:  runToken,
}

var (
	tokenUserID     uint
	tokenPrivateKey string
	tokenPublicKey  string
	tokenTTL        time.Duration
)

func init() {
	tokenCmd.Flags().UintVarP(&tokenUserID, "user", "u", 0, "用户 ID（必填）")
	tokenCmd.Flags().StringVar(&tokenPrivateKey, "private-key", os.Getenv("JWT_PRIVATE_KEY_PATH"), "RSA 私钥路径（默认读 JWT_PRIVATE_KEY_PATH）")
	tokenCmd.Flags().StringVar(&tokenPublicKey, "public-key", os.Getenv("JWT_PUBLIC_KEY_PATH"), "RSA 公钥路径（默认读 JWT_PUBLIC_KEY_PATH）")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "令牌有效期")

	if err := tokenCmd.MarkFlagRequired("user"); err != nil {
		panic(fmt.Sprintf("failed to mark user flag as required: %v", err))
	}

	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	if tokenUserID == 0 {
		return fmt.Errorf("--user must be positive")
	}
	if tokenPrivateKey == "" || tokenPublicKey == "" {
		return fmt.Errorf("both --private-key and --public-key are required")
	}

	privatePEM, err := os.ReadFile(tokenPrivateKey)
	if err != nil {
		return fmt.Errorf("read private key: %w", err)
	}
	publicPEM, err := os.ReadFile(tokenPublicKey)
	if err != nil {
		return fmt.Errorf("read public key: %w", err)
	}

	svc, err := auth.NewAuthService(privatePEM, publicPEM, tokenTTL)
	if err != nil {
		return err
	}
	token, err := svc.IssueAccessToken(tokenUserID)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
