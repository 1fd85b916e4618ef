package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unclebandit/promo-dashboard/internal/service"
)

func TestExtractName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "introduction", text: "Olá, meu nome é joão silva", want: "João Silva"},
		{name: "chamo-me", text: "Bom dia! Chamo-me MARIA", want: "Maria"},
		{name: "sou a", text: "oi sou a ana paula, quero participar", want: "Ana Paula"},
		{name: "first two words", text: "carlos souza quero participar", want: "Carlos Souza"},
		{name: "second word not alphabetic", text: "Pedro 123", want: "Pedro"},
		{name: "short first word", text: "oi tudo bem", want: ""},
		{name: "single word", text: "participar", want: ""},
		{name: "digits first", text: "123 quero", want: ""},
		{name: "empty", text: "", want: ""},
		{name: "whitespace", text: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.ExtractName(tt.text))
		})
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ana", service.DisplayName("Ana", "5511999991234", "Pessoa"))
	assert.Equal(t, "Pessoa (1234)", service.DisplayName("", "5511999991234", "Pessoa"))
	assert.Equal(t, "Participante (12)", service.DisplayName("", "12", "Participante"))
}
