package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zemenay/techpulse-api/internal/logger"
	"github.com/zemenay/techpulse-api/internal/repository/gormrepo"
	"github.com/zemenay/techpulse-api/internal/service"
)

var adminFlags struct {
	name     string
	email    string
	password string
}

// userCmd 用户管理命令
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "用户管理命令",
}

// createAdminCmd 创建管理员用户命令
// 示例：./techpulse-api user create --name admin --email admin@example.com
var createAdminCmd = &cobra.Command{
	Use:   "create",
	Short: "创建管理员用户",
	Long:  `创建管理员用户，未通过参数提供密码时从标准输入读取`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return createAdminUser(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminFlags.name, "name", "", "管理员名称")
	createAdminCmd.Flags().StringVar(&adminFlags.email, "email", "", "管理员邮箱")
	createAdminCmd.Flags().StringVar(&adminFlags.password, "password", "", "管理员密码")
	_ = createAdminCmd.MarkFlagRequired("name")
	_ = createAdminCmd.MarkFlagRequired("email")

	userCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(userCmd)
}

// createAdminUser 创建管理员用户
func createAdminUser(ctx context.Context, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	password := adminFlags.password
	if password == "" {
		fmt.Fprint(out, "请输入管理员密码: ")
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("读取密码失败: %w", err)
		}
		password = strings.TrimSpace(line)
	}
	if len(password) < 8 {
		return errors.New("密码至少8位")
	}

	inf, err := connectInfra(ctx)
	if err != nil {
		return err
	}
	defer inf.close()

	users := service.NewUserService(gormrepo.NewUserRepo(inf.db), nil, logger.GetSugaredLogger())
	user, err := users.CreateAdmin(ctx, adminFlags.name, adminFlags.email, password)
	if err != nil {
		return fmt.Errorf("创建管理员用户失败: %w", err)
	}

	fmt.Fprintf(out, "管理员用户创建成功！\n")
	fmt.Fprintf(out, "ID: %d\n", user.ID)
	fmt.Fprintf(out, "邮箱: %s\n", user.Email)
	return nil
}
