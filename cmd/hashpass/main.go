package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/tawdev/mahtaaj/internal/auth"
)

// Petit outil pour générer un hash argon2id à insérer en base.
func main() {
	var password string
	if len(os.Args) > 1 {
		password = os.Args[1]
	} else {
		fmt.Fprint(os.Stderr, "Mot de passe: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Fprintln(os.Stderr, "lecture impossible:", err)
			os.Exit(1)
		}
		password = strings.TrimSpace(line)
	}

	if password == "" {
		fmt.Fprintln(os.Stderr, "mot de passe vide")
		os.Exit(1)
	}

	hash, err := auth.Hash(password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hachage impossible:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
