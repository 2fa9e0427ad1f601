// CLI tool to create a user with a bcrypt-hashed password and a fresh auth token.
// Works against either backend; the driver and DSN come from .env or flags.
// Usage: go run ./cmd/create-user [-driver postgres|sqlite] [-dsn ...]
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/mail"
	"os"
	"strings"

	"lg/fitness-metrics-go-api/internal/store"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	driver := flag.String("driver", envOr("DB_DRIVER", store.DriverPostgres), "postgres or sqlite")
	dsn := flag.String("dsn", "", "database URL or sqlite path (defaults to DB_URL / SQLITE_PATH)")
	flag.Parse()
	if *dsn == "" {
		*dsn = defaultDSN(*driver)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, *driver, *dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	reader := bufio.NewReader(os.Stdin)
	username := prompt(reader, "Username: ")
	email := prompt(reader, "Email: ")
	password := prompt(reader, "Password: ")

	u, err := newUser(username, email, password, bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid user: %v\n", err)
		os.Exit(1)
	}
	u, err = st.CreateUser(ctx, u)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nUser created successfully!\n")
	fmt.Printf("  ID:         %d\n", u.ID)
	fmt.Printf("  Username:   %s\n", u.Username)
	fmt.Printf("  Auth Token: %s\n", u.AuthToken)
}

func prompt(r *bufio.Reader, label string) string {
	fmt.Print(label)
	s, _ := r.ReadString('\n')
	return strings.TrimSpace(s)
}

// newUser validates the input and builds the row to insert.
func newUser(username, email, password string, cost int) (store.User, error) {
	switch {
	case username == "":
		return store.User{}, errors.New("username is required")
	case len(password) < 8:
		return store.User{}, errors.New("password must be at least 8 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return store.User{}, fmt.Errorf("email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return store.User{}, fmt.Errorf("hash password: %w", err)
	}
	return store.User{
		Username:  username,
		Email:     email,
		Password:  string(hash),
		AuthToken: uuid.New().String(),
	}, nil
}

func defaultDSN(driver string) string {
	if driver == store.DriverSQLite {
		return envOr("SQLITE_PATH", "fitness.db")
	}
	return os.Getenv("DB_URL")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
