package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/skullkeeper/internal/models"
)

type scanner interface {
	Scan(dest ...any) error
}

// mapper binds an entity kind to its table.
type mapper[D any] struct {
	kind    models.Kind
	table   string
	columns []string
	values  func(D) []any
	scan    func(scanner) (models.WithID[D], error)
	// conflict is the WHERE clause selecting uniqueness candidates; rows it
	// returns are re-checked with ConflictsWith. Empty means no rule.
	conflict     string
	conflictArgs func(D) []any
}

var skullMapper = mapper[models.Skull]{
	kind:    models.KindSkull,
	table:   "skulls",
	columns: []string{"name", "color", "icon", "unit_price", `"limit"`},
	values: func(s models.Skull) []any {
		var limit sql.NullFloat64
		if s.Limit != nil {
			limit = sql.NullFloat64{Float64: *s.Limit, Valid: true}
		}
		return []any{s.Name, int64(s.Color), s.Icon, s.UnitPrice, limit}
	},
	scan: func(r scanner) (models.WithID[models.Skull], error) {
		var (
			e     models.WithID[models.Skull]
			color int64
			limit sql.NullFloat64
		)
		if err := r.Scan(&e.ID, &e.Data.Name, &color, &e.Data.Icon, &e.Data.UnitPrice, &limit); err != nil {
			return e, err
		}
		e.Data.Color = uint32(color)
		if limit.Valid {
			v := limit.Float64
			e.Data.Limit = &v
		}
		return e, nil
	},
	conflict: "name = ? OR color = ? OR icon = ?",
	conflictArgs: func(s models.Skull) []any {
		return []any{s.Name, int64(s.Color), s.Icon}
	},
}

var quickMapper = mapper[models.Quick]{
	kind:    models.KindQuick,
	table:   "quicks",
	columns: []string{"skull", "amount"},
	values: func(q models.Quick) []any {
		return []any{int64(q.Skull), q.Amount}
	},
	scan: func(r scanner) (models.WithID[models.Quick], error) {
		var e models.WithID[models.Quick]
		err := r.Scan(&e.ID, &e.Data.Skull, &e.Data.Amount)
		return e, err
	},
	conflict: "skull = ?",
	conflictArgs: func(q models.Quick) []any {
		return []any{int64(q.Skull)}
	},
}

var occurrenceMapper = mapper[models.Occurrence]{
	kind:    models.KindOccurrence,
	table:   "occurrences",
	columns: []string{"skull", "amount", "millis"},
	values: func(o models.Occurrence) []any {
		return []any{int64(o.Skull), o.Amount, o.Millis}
	},
	scan: func(r scanner) (models.WithID[models.Occurrence], error) {
		var e models.WithID[models.Occurrence]
		err := r.Scan(&e.ID, &e.Data.Skull, &e.Data.Amount, &e.Data.Millis)
		return e, err
	},
}

func (m mapper[D]) selectColumns() string {
	return "id, " + strings.Join(m.columns, ", ")
}

func (m mapper[D]) selectAll() string {
	return fmt.Sprintf("SELECT %s FROM %s", m.selectColumns(), m.table)
}

func (m mapper[D]) insert() string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(m.columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", m.table, strings.Join(m.columns, ", "), marks)
}

func (m mapper[D]) update() string {
	sets := make([]string, len(m.columns))
	for i, c := range m.columns {
		sets[i] = c + " = ?"
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", m.table, strings.Join(sets, ", "))
}

// list orders skulls and quicks by id and occurrences newest first. A limit
// keeps the tail of the id order or the head of the time order.
func (m mapper[D]) list(limited bool) string {
	if m.kind == models.KindOccurrence {
		q := m.selectAll() + " ORDER BY millis DESC, id DESC"
		if limited {
			q += " LIMIT ?"
		}
		return q
	}
	if !limited {
		return m.selectAll() + " ORDER BY id"
	}
	return fmt.Sprintf("SELECT %s FROM (%s ORDER BY id DESC LIMIT ?) ORDER BY id", m.selectColumns(), m.selectAll())
}
