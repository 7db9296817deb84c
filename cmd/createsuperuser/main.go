package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/Skotchmaster/product_hub/internal/config"
	"github.com/Skotchmaster/product_hub/internal/db"
	"github.com/Skotchmaster/product_hub/internal/repo"
	"github.com/Skotchmaster/product_hub/internal/service"
)

var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

func main() {
	email := flag.String("email", "", "email of the new superuser")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	password, err := promptPassword(os.Stdin, os.Stderr)
	if err != nil {
		log.Fatalf("password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gdb, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close(gdb)

	svc := &service.AuthService{Repo: repo.New(gdb)}
	user, err := svc.CreateSuperuser(ctx, *email, password)
	if err != nil {
		log.Fatalf("create superuser: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Superuser %s created (id %d).\n", user.Email, user.ID)
}

// promptPassword reads the password twice without echo on a terminal, or a
// single line when stdin is piped.
func promptPassword(in *os.File, w io.Writer) (string, error) {
	fd := int(in.Fd())
	if !isTerminal(fd) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	first, err := ask(fd, w, "Password: ")
	if err != nil {
		return "", err
	}
	second, err := ask(fd, w, "Password (again): ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("passwords didn't match")
	}
	return first, nil
}

func ask(fd int, w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return "", err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
