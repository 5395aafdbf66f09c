package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/caec/caec-backend/internal/contacts"
	"github.com/caec/caec-backend/internal/systems"
	"github.com/caec/caec-backend/internal/users"
	"github.com/caec/caec-backend/pkg/db/models"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

type userLister interface {
	List(ctx context.Context) ([]models.User, error)
	CountActive(ctx context.Context) (int64, error)
}

type systemLister interface {
	ListWithOwners(ctx context.Context) ([]systems.SystemWithOwner, error)
	CountLinked(ctx context.Context) (int64, error)
	CountAvailable(ctx context.Context) (int64, error)
}

type contactLister interface {
	ListWithUsers(ctx context.Context) ([]contacts.ContactWithUser, error)
}

// Stats are the headline counters printed at the end of a full report.
type Stats struct {
	ActiveUsers      int64 `json:"active_users" yaml:"active_users"`
	LinkedSystems    int64 `json:"linked_systems" yaml:"linked_systems"`
	AvailableSystems int64 `json:"available_systems" yaml:"available_systems"`
}

// fullReport is what the root command emits in json and yaml mode.
type fullReport struct {
	Users    []users.UserDTO            `json:"users" yaml:"users"`
	Systems  []systems.SystemWithOwner  `json:"systems" yaml:"systems"`
	Contacts []contacts.ContactWithUser `json:"contacts" yaml:"contacts"`
	Stats    Stats                      `json:"stats" yaml:"stats"`
}

type reporter struct {
	users    userLister
	systems  systemLister
	contacts contactLister
	out      io.Writer
	format   string
}

func newReporter(u userLister, s systemLister, c contactLister, out io.Writer, format string) (*reporter, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "":
		format = formatTable
	case formatTable, formatJSON, formatYAML:
	default:
		return nil, fmt.Errorf("unknown output format %q (want table|json|yaml)", format)
	}
	return &reporter{users: u, systems: s, contacts: c, out: out, format: format}, nil
}

func (r *reporter) Users(ctx context.Context) error {
	rows, err := r.loadUsers(ctx)
	if err != nil {
		return err
	}
	if r.format != formatTable {
		return r.encode(rows)
	}
	return r.usersTable(rows)
}

func (r *reporter) Systems(ctx context.Context) error {
	rows, err := r.systems.ListWithOwners(ctx)
	if err != nil {
		return fmt.Errorf("list systems: %w", err)
	}
	if r.format != formatTable {
		return r.encode(rows)
	}
	return r.systemsTable(rows)
}

func (r *reporter) Contacts(ctx context.Context) error {
	rows, err := r.contacts.ListWithUsers(ctx)
	if err != nil {
		return fmt.Errorf("list contacts: %w", err)
	}
	if r.format != formatTable {
		return r.encode(rows)
	}
	return r.contactsTable(rows)
}

func (r *reporter) Stats(ctx context.Context) error {
	stats, err := r.loadStats(ctx)
	if err != nil {
		return err
	}
	if r.format != formatTable {
		return r.encode(stats)
	}
	return r.statsTable(stats)
}

// All prints every section. Non-table formats emit a single document.
func (r *reporter) All(ctx context.Context) error {
	if r.format == formatTable {
		for _, section := range []func(context.Context) error{r.Users, r.Systems, r.Contacts, r.Stats} {
			if err := section(ctx); err != nil {
				return err
			}
			fmt.Fprintln(r.out)
		}
		return nil
	}

	var (
		doc fullReport
		err error
	)
	if doc.Users, err = r.loadUsers(ctx); err != nil {
		return err
	}
	if doc.Systems, err = r.systems.ListWithOwners(ctx); err != nil {
		return fmt.Errorf("list systems: %w", err)
	}
	if doc.Contacts, err = r.contacts.ListWithUsers(ctx); err != nil {
		return fmt.Errorf("list contacts: %w", err)
	}
	if doc.Stats, err = r.loadStats(ctx); err != nil {
		return err
	}
	return r.encode(doc)
}

func (r *reporter) loadUsers(ctx context.Context) ([]users.UserDTO, error) {
	rows, err := r.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]users.UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *users.FromModel(&rows[i]))
	}
	return out, nil
}

func (r *reporter) loadStats(ctx context.Context) (Stats, error) {
	var (
		s   Stats
		err error
	)
	if s.ActiveUsers, err = r.users.CountActive(ctx); err != nil {
		return s, fmt.Errorf("count active users: %w", err)
	}
	if s.LinkedSystems, err = r.systems.CountLinked(ctx); err != nil {
		return s, fmt.Errorf("count linked systems: %w", err)
	}
	if s.AvailableSystems, err = r.systems.CountAvailable(ctx); err != nil {
		return s, fmt.Errorf("count available systems: %w", err)
	}
	return s, nil
}

func (r *reporter) encode(v any) error {
	switch r.format {
	case formatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
}

func (r *reporter) table(title string, header []string, rows [][]string) error {
	fmt.Fprintf(r.out, "== %s (%d)\n", title, len(rows))
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func (r *reporter) usersTable(rows []users.UserDTO) error {
	out := make([][]string, 0, len(rows))
	for _, u := range rows {
		last := "-"
		if u.UltimoAcceso != nil {
			last = u.UltimoAcceso.Format("2006-01-02 15:04")
		}
		out = append(out, []string{
			fmt.Sprint(u.ID), u.FullName(), u.Email,
			u.FechaRegistro.Format("2006-01-02 15:04"), last, fmt.Sprint(u.Activo),
		})
	}
	return r.table("usuarios", []string{"ID", "NOMBRE", "EMAIL", "REGISTRO", "ULTIMO ACCESO", "ACTIVO"}, out)
}

func (r *reporter) systemsTable(rows []systems.SystemWithOwner) error {
	out := make([][]string, 0, len(rows))
	for _, s := range rows {
		owner := "-"
		if s.OwnerEmail != nil {
			owner = *s.OwnerEmail
		}
		out = append(out, []string{
			fmt.Sprint(s.ID), s.CodigoSistema, str(s.NombreSistema), string(s.Estado), str(s.Modelo), owner,
		})
	}
	return r.table("sistemas", []string{"ID", "CODIGO", "NOMBRE", "ESTADO", "MODELO", "PROPIETARIO"}, out)
}

func (r *reporter) contactsTable(rows []contacts.ContactWithUser) error {
	out := make([][]string, 0, len(rows))
	for _, c := range rows {
		out = append(out, []string{
			fmt.Sprint(c.UsuarioID), c.Email, str(c.Telefono), str(c.Celular), str(c.Ciudad), str(c.Pais),
		})
	}
	return r.table("contactos", []string{"USUARIO", "EMAIL", "TELEFONO", "CELULAR", "CIUDAD", "PAIS"}, out)
}

func (r *reporter) statsTable(s Stats) error {
	return r.table("estadisticas", []string{"METRICA", "VALOR"}, [][]string{
		{"usuarios activos", fmt.Sprint(s.ActiveUsers)},
		{"sistemas vinculados", fmt.Sprint(s.LinkedSystems)},
		{"sistemas disponibles", fmt.Sprint(s.AvailableSystems)},
	})
}

func str(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}
