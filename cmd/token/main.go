// token emite un JWT para operadores (no hay login en la API).
//
// Uso: go run ./cmd/token -user <id> [-role admin|staff] [-minutes 60]
// Lee JWT_SECRET, JWT_ISSUER y JWT_EXPIRATION_MINUTES de la configuración habitual.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/billing-api/pkg/config"
	"github.com/jhoicas/billing-api/pkg/jwt"
)

func main() {
	user := flag.String("user", "", "identificador del usuario (obligatorio)")
	role := flag.String("role", jwt.RoleStaff, "rol: admin o staff")
	minutes := flag.Int("minutes", 0, "minutos de validez (0 = JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	if *user == "" {
		fmt.Fprintln(os.Stderr, "Falta -user")
		flag.Usage()
		os.Exit(2)
	}
	if *role != jwt.RoleAdmin && *role != jwt.RoleStaff {
		fmt.Fprintf(os.Stderr, "Rol no válido: %q\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET vacío")
		os.Exit(1)
	}
	exp := *minutes
	if exp <= 0 {
		exp = cfg.JWT.Expiration
	}

	tok, err := jwt.Generate(cfg.JWT.Secret, *user, *role, cfg.JWT.Issuer, exp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
