package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		want   Role
		wantOK bool
	}{
		{"", Student, true},
		{"  ", Student, true},
		{"admin", Admin, true},
		{"guest", Guest, true},
		{"security", Security, true},
		{"superuser", Role("superuser"), false},
		{"Admin", Role("Admin"), false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Parse(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExcept(t *testing.T) {
	got := Except(Guest)
	assert.Equal(t, []Role{Student, Lecturer, Staff, Security, Admin}, got)
	assert.Len(t, Except(), len(All))
}

func TestIn(t *testing.T) {
	assert.True(t, In(Admin, Staff, Admin))
	assert.False(t, In(Guest, Staff, Admin))
	assert.False(t, In(Guest))
}
