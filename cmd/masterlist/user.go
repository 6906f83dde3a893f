package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/greyfable/masterlist/internal/access"
	"github.com/greyfable/masterlist/internal/auth"
	"github.com/greyfable/masterlist/internal/config"
	"github.com/greyfable/masterlist/internal/db"
	"github.com/greyfable/masterlist/internal/models"
	"github.com/greyfable/masterlist/internal/repository"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management commands",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user",
	RunE:  runUserCreate,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE:  runUserList,
}

var userDeactivateCmd = &cobra.Command{
	Use:   "deactivate [email]",
	Short: "Deactivate a user and end their sessions",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserDeactivate,
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete [email]",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserDelete,
}

var userResetPasswordCmd = &cobra.Command{
	Use:   "reset-password [email]",
	Short: "Reset user password",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserResetPassword,
}

var (
	userEmail    string
	userPassword string
	userName     string
	userRole     string
)

func init() {
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "User email")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "User password (will prompt if not provided)")
	userCreateCmd.Flags().StringVar(&userName, "username", "", "Display name")
	userCreateCmd.Flags().StringVar(&userRole, "role", models.RoleModerator, "Role (administrator or moderator)")
	userCreateCmd.MarkFlagRequired("email")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userDeactivateCmd)
	userCmd.AddCommand(userDeleteCmd)
	userCmd.AddCommand(userResetPasswordCmd)

	userCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "/etc/masterlist/config.yaml", "Path to configuration file")
}

func openUserRepos() (*db.DB, *repository.UserRepository, *repository.SessionRepository, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, nil, err
	}

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, nil, nil, err
	}

	return database, repository.NewUserRepository(database.DB), repository.NewSessionRepository(database.DB), nil
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	role, ok := access.ParseRole(userRole)
	if !ok {
		return fmt.Errorf("unknown role %q (want administrator or moderator)", userRole)
	}

	database, users, _, err := openUserRepos()
	if err != nil {
		return err
	}
	defer database.Close()

	password := userPassword
	if password == "" {
		password, err = promptPassword("Enter password: ")
		if err != nil {
			return err
		}
	}

	if len(password) < 10 {
		return fmt.Errorf("password must be at least 10 characters")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	username := userName
	if username == "" {
		username = userEmail
		if i := strings.IndexByte(userEmail, '@'); i > 0 {
			username = userEmail[:i]
		}
	}

	u := &models.User{
		ID:           uuid.New().String(),
		Email:        userEmail,
		Username:     username,
		Role:         string(role),
		PasswordHash: hash,
		Active:       true,
	}
	if err := users.Create(u); err != nil {
		return err
	}

	fmt.Printf("User %s (%s) created successfully\n", userEmail, role)
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	database, users, _, err := openUserRepos()
	if err != nil {
		return err
	}
	defer database.Close()

	list, err := users.List()
	if err != nil {
		return err
	}

	fmt.Printf("%-36s  %-30s  %-20s  %-13s  %s\n", "ID", "Email", "Username", "Role", "Active")
	fmt.Println(strings.Repeat("-", 110))

	for _, u := range list {
		fmt.Printf("%-36s  %-30s  %-20s  %-13s  %v\n", u.ID, u.Email, u.Username, u.Role, u.Active)
	}

	return nil
}

func runUserDeactivate(cmd *cobra.Command, args []string) error {
	email := args[0]

	database, users, sessions, err := openUserRepos()
	if err != nil {
		return err
	}
	defer database.Close()

	u, err := users.FindByEmail(email)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("user %s not found", email)
	}

	u.Active = false
	if err := users.Update(u); err != nil {
		return err
	}
	if err := sessions.DeleteForUser(u.ID); err != nil {
		return err
	}

	fmt.Printf("User %s deactivated\n", email)
	return nil
}

func runUserDelete(cmd *cobra.Command, args []string) error {
	email := args[0]

	database, users, _, err := openUserRepos()
	if err != nil {
		return err
	}
	defer database.Close()

	u, err := users.FindByEmail(email)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("user %s not found", email)
	}

	fmt.Printf("Are you sure you want to delete user %s? [y/N]: ", email)
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))

	if response != "y" && response != "yes" {
		fmt.Println("Cancelled")
		return nil
	}

	if err := users.Delete(u.ID); err != nil {
		return err
	}

	fmt.Printf("User %s deleted\n", email)
	return nil
}

func runUserResetPassword(cmd *cobra.Command, args []string) error {
	email := args[0]

	database, users, _, err := openUserRepos()
	if err != nil {
		return err
	}
	defer database.Close()

	u, err := users.FindByEmail(email)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("user %s not found", email)
	}

	password, err := promptPassword("Enter new password: ")
	if err != nil {
		return err
	}

	if len(password) < 10 {
		return fmt.Errorf("password must be at least 10 characters")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := users.UpdatePassword(u.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	fmt.Printf("Password for %s updated successfully\n", email)
	return nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	pwBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	fmt.Print("Confirm password: ")
	pwBytes2, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	if string(pwBytes) != string(pwBytes2) {
		return "", fmt.Errorf("passwords do not match")
	}

	return string(pwBytes), nil
}
