package file

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/skullkeeper/internal/models"
)

// codec maps an entity to and from its TSV fields, id excluded.
type codec[D any] struct {
	fields int
	encode func(D) []string
	decode func([]string) (D, error)
}

var skullCodec = codec[models.Skull]{
	fields: 5,
	encode: func(s models.Skull) []string {
		limit := ""
		if s.Limit != nil {
			limit = formatFloat(*s.Limit)
		}
		return []string{s.Name, strconv.FormatUint(uint64(s.Color), 10), s.Icon, formatFloat(s.UnitPrice), limit}
	},
	decode: func(f []string) (models.Skull, error) {
		var s models.Skull
		color, err := strconv.ParseUint(f[1], 10, 32)
		if err != nil {
			return s, fmt.Errorf("color: %w", err)
		}
		price, err := strconv.ParseFloat(f[3], 64)
		if err != nil {
			return s, fmt.Errorf("unit price: %w", err)
		}
		s = models.Skull{Name: f[0], Color: uint32(color), Icon: f[2], UnitPrice: price}
		if f[4] != "" {
			limit, err := strconv.ParseFloat(f[4], 64)
			if err != nil {
				return s, fmt.Errorf("limit: %w", err)
			}
			s.Limit = &limit
		}
		return s, nil
	},
}

var quickCodec = codec[models.Quick]{
	fields: 2,
	encode: func(q models.Quick) []string {
		return []string{formatID(q.Skull), formatFloat(q.Amount)}
	},
	decode: func(f []string) (models.Quick, error) {
		skull, err := parseID(f[0])
		if err != nil {
			return models.Quick{}, fmt.Errorf("skull: %w", err)
		}
		amount, err := strconv.ParseFloat(f[1], 64)
		if err != nil {
			return models.Quick{}, fmt.Errorf("amount: %w", err)
		}
		return models.Quick{Skull: skull, Amount: amount}, nil
	},
}

var occurrenceCodec = codec[models.Occurrence]{
	fields: 3,
	encode: func(o models.Occurrence) []string {
		return []string{formatID(o.Skull), formatFloat(o.Amount), strconv.FormatInt(o.Millis, 10)}
	},
	decode: func(f []string) (models.Occurrence, error) {
		skull, err := parseID(f[0])
		if err != nil {
			return models.Occurrence{}, fmt.Errorf("skull: %w", err)
		}
		amount, err := strconv.ParseFloat(f[1], 64)
		if err != nil {
			return models.Occurrence{}, fmt.Errorf("amount: %w", err)
		}
		millis, err := strconv.ParseInt(f[2], 10, 64)
		if err != nil {
			return models.Occurrence{}, fmt.Errorf("millis: %w", err)
		}
		return models.Occurrence{Skull: skull, Amount: amount, Millis: millis}, nil
	},
}

func (c codec[D]) marshal(e models.WithID[D]) string {
	fields := c.encode(e.Data)
	var b strings.Builder
	b.WriteString(formatID(e.ID))
	for _, f := range fields {
		b.WriteByte('\t')
		b.WriteString(escaper.Replace(f))
	}
	b.WriteByte('\n')
	return b.String()
}

func (c codec[D]) unmarshal(line string) (models.WithID[D], error) {
	var e models.WithID[D]

	raw := strings.Split(line, "\t")
	if len(raw) != c.fields+1 {
		return e, fmt.Errorf("want %d fields, got %d", c.fields+1, len(raw))
	}
	id, err := parseID(raw[0])
	if err != nil {
		return e, fmt.Errorf("id: %w", err)
	}

	fields := make([]string, c.fields)
	for i, f := range raw[1:] {
		if fields[i], err = unescape(f); err != nil {
			return e, err
		}
	}
	data, err := c.decode(fields)
	if err != nil {
		return e, err
	}
	return models.WithID[D]{ID: id, Data: data}, nil
}

var escaper = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`)

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		if i+1 == len(s) {
			return "", fmt.Errorf("dangling escape in %q", s)
		}
		i++
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		default:
			return "", fmt.Errorf("unknown escape \\%c in %q", s[i], s)
		}
	}
	return b.String(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatID(id models.ID) string {
	return strconv.FormatUint(uint64(id), 10)
}

func parseID(s string) (models.ID, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	return models.ID(v), err
}
