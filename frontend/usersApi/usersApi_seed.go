package usersapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	adminusers "userdesk/frontend/adminUsers"
	"userdesk/infrastructure/audit"
	"userdesk/infrastructure/sqlite"
	"userdesk/models"
)

var demoNames = []string{
	"Ana Lima", "Bruno Costa", "Carla Mendes", "Diego Alves", "Eva Souza", "Felipe Rocha",
	"Gabriela Dias", "Hugo Martins", "Isabela Nunes", "João Pereira", "Karina Lopes", "Lucas Ribeiro",
	"Marina Castro", "Nicolas Barros", "Olívia Freitas", "Paulo Teixeira", "Quésia Moura", "Rafael Cardoso",
	"Sofia Araújo", "Tiago Gomes", "Úrsula Pinto", "Vitor Santos", "Yasmin Ferreira",
}

// DemoUsers is the sample directory loaded by the seed command.
func DemoUsers() []adminusers.UserInput {
	roles := adminusers.Roles()
	out := make([]adminusers.UserInput, 0, len(demoNames))
	for i, name := range demoNames {
		local := strings.ToLower(strings.Fields(name)[0])
		out = append(out, adminusers.UserInput{
			Name:  name,
			Email: fmt.Sprintf("%s%d@example.com", local, i+1),
			Role:  roles[i%len(roles)],
		})
	}
	return out
}

// SeedUsers creates users in order. With reset the directory is emptied first.
func SeedUsers(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, users []adminusers.UserInput, reset bool) (int, error) {
	if reset {
		err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
			_, err := tx.NewDelete().Model((*models.User)(nil)).Where("1 = 1").Exec(ctx)
			return err
		})
		if err != nil {
			return 0, fmt.Errorf("reset users: %w", err)
		}
	}
	for i, in := range users {
		if _, err := CreateUser(ctx, db, auditSvc, in); err != nil {
			return i, fmt.Errorf("seed %q: %w", in.Name, err)
		}
	}
	return len(users), nil
}
