package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/dmitrijs2005/skullkeeper/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestSkull_Validate(t *testing.T) {
	valid := Skull{Name: "coffee", Color: 0xff0000, Icon: "cup", UnitPrice: 2.5}

	tests := []struct {
		name    string
		mutate  func(*Skull)
		wantErr bool
	}{
		{"valid", func(*Skull) {}, false},
		{"zero price", func(s *Skull) { s.UnitPrice = 0 }, false},
		{"with limit", func(s *Skull) { s.Limit = ptr(3.0) }, false},
		{"blank name", func(s *Skull) { s.Name = "  " }, true},
		{"newline in name", func(s *Skull) { s.Name = "a\nb" }, true},
		{"blank icon", func(s *Skull) { s.Icon = "" }, true},
		{"negative price", func(s *Skull) { s.UnitPrice = -1 }, true},
		{"nan price", func(s *Skull) { s.UnitPrice = math.NaN() }, true},
		{"infinite limit", func(s *Skull) { s.Limit = ptr(math.Inf(1)) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrConstraint)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSkull_ConflictsWith(t *testing.T) {
	base := Skull{Name: "coffee", Color: 1, Icon: "cup"}

	assert.True(t, base.ConflictsWith(Skull{Name: "coffee", Color: 2, Icon: "mug"}))
	assert.True(t, base.ConflictsWith(Skull{Name: "tea", Color: 1, Icon: "mug"}))
	assert.True(t, base.ConflictsWith(Skull{Name: "tea", Color: 2, Icon: "cup"}))
	assert.False(t, base.ConflictsWith(Skull{Name: "Coffee", Color: 2, Icon: "Cup"}))
}

func TestSkull_Equal(t *testing.T) {
	a := Skull{Name: "coffee", Color: 1, Icon: "cup", UnitPrice: 1}
	b := a

	assert.True(t, a.Equal(b))

	b.Limit = ptr(2.0)
	assert.False(t, a.Equal(b))

	a.Limit = ptr(2.0)
	assert.True(t, a.Equal(b))

	a.Limit = ptr(2.5)
	assert.False(t, a.Equal(b))
}

func TestQuick_Rules(t *testing.T) {
	q := Quick{Skull: 1, Amount: 1.5}

	require.NoError(t, q.Validate())
	assert.ErrorIs(t, Quick{Skull: 1, Amount: -0.5}.Validate(), common.ErrConstraint)

	assert.True(t, q.ConflictsWith(Quick{Skull: 1, Amount: 1.5 + 1e-9}))
	assert.False(t, q.ConflictsWith(Quick{Skull: 2, Amount: 1.5}))
	assert.False(t, q.ConflictsWith(Quick{Skull: 1, Amount: 1.6}))

	assert.False(t, q.Equal(Quick{Skull: 1, Amount: 1.5 + 1e-9}))

	ref, ok := q.SkullRef()
	assert.True(t, ok)
	assert.Equal(t, ID(1), ref)
}

func TestAmountsEqual(t *testing.T) {
	assert.True(t, AmountsEqual(0, 0))
	assert.True(t, AmountsEqual(0, 5e-7))
	assert.False(t, AmountsEqual(0, 2e-6))
	assert.True(t, AmountsEqual(1e9, 1e9+100))
	assert.False(t, AmountsEqual(1e9, 1e9+10000))
}

func TestOccurrence_Rules(t *testing.T) {
	o := Occurrence{Skull: 3, Amount: 1, Millis: 1000}

	require.NoError(t, o.Validate())
	assert.ErrorIs(t, Occurrence{Skull: 3, Amount: 0}.Validate(), common.ErrConstraint)
	assert.False(t, o.ConflictsWith(o))
	assert.True(t, o.Equal(o))
	assert.False(t, o.Equal(Occurrence{Skull: 3, Amount: 1, Millis: 1001}))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindSkull, KindOf[Skull]())
	assert.Equal(t, KindQuick, KindOf[Quick]())
	assert.Equal(t, KindOccurrence, KindOf[Occurrence]())
	assert.Equal(t, "occurrence", KindOccurrence.String())
}

func TestWithID_JSON(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{
			name: "skull without limit",
			in:   WithID[Skull]{ID: 4, Data: Skull{Name: "n", Color: 9, Icon: "i", UnitPrice: 0.5}},
			want: `{"id":4,"name":"n","color":9,"icon":"i","unitPrice":0.5}`,
		},
		{
			name: "skull with limit",
			in:   WithID[Skull]{ID: 1, Data: Skull{Name: "n", Color: 9, Icon: "i", Limit: ptr(2.0)}},
			want: `{"id":1,"name":"n","color":9,"icon":"i","unitPrice":0,"limit":2}`,
		},
		{
			name: "occurrence",
			in:   WithID[Occurrence]{ID: 2, Data: Occurrence{Skull: 1, Amount: 3, Millis: 99}},
			want: `{"id":2,"skull":1,"amount":3,"millis":99}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}
}

func TestWithID_UnmarshalJSON(t *testing.T) {
	var got WithID[Quick]
	require.NoError(t, json.Unmarshal([]byte(`{"id":12,"skull":3,"amount":0.25}`), &got))

	want := WithID[Quick]{ID: 12, Data: Quick{Skull: 3, Amount: 0.25}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	assert.Error(t, json.Unmarshal([]byte(`{"id":"x"}`), &got))
}

func TestSkull_Clone(t *testing.T) {
	s := Skull{Name: "n", Color: 1, Icon: "i", UnitPrice: 1, Limit: ptr(3.0)}
	c := s.Clone()
	require.NotNil(t, c.Limit)
	assert.True(t, s.Equal(c))

	*s.Limit = 9
	assert.Equal(t, 3.0, *c.Limit)

	assert.Nil(t, Skull{Name: "n"}.Clone().Limit)
}
