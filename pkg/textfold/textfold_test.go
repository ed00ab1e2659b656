package textfold

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, Fold("maria"), Fold("MARIA"))
	assert.Equal(t, Fold("joão"), Fold("JOÃO"))
	assert.NotEqual(t, Fold("joão"), Fold("joao"))
}

func TestKey(t *testing.T) {
	testCases := []struct {
		a, b string
	}{
		{"Não Confirmada", "nao confirmada"},
		{"  NÃO   CONFIRMADA ", "não confirmada"},
		{"Pós Cirurgia", "POS CIRURGIA"},
		{"Concluída - Compareceu", "concluida - compareceu"},
	}

	for _, tc := range testCases {
		t.Run(tc.a, func(t *testing.T) {
			assert.Equal(t, Key(tc.a), Key(tc.b))
		})
	}
}
