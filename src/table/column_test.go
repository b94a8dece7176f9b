package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnMatchIgnoresCaseAndPunctuation(t *testing.T) {
	col := NewColumn("date", "дата", "заключения")
	pos, err := col.Match([]string{"Номер сделки", "Дата /время заключения сделки", "Количество"})
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
}

func TestColumnMatchIsWordOrderIndependent(t *testing.T) {
	col := NewColumn("date", "заключения", "дата")
	pos, err := col.Match([]string{"Дата заключения", "Дата исполнения"})
	require.NoError(t, err)
	assert.Equal(t, 0, pos)
}

func TestColumnMatchRequiresAllKeywords(t *testing.T) {
	col := NewColumn("count", "количество", "штук")
	_, err := col.Match([]string{"Количество", "Сумма"})
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestColumnOrTriesAlternatives(t *testing.T) {
	col := NewColumn("accrued", "нкд").Or("накопленный", "доход")
	pos, err := col.Match([]string{"Сумма сделки", "Накопленный купонный доход"})
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	pos, err = col.Match([]string{"НКД", "Сумма сделки"})
	require.NoError(t, err)
	assert.Equal(t, 0, pos)
}

func TestMatchInPrefersUnclaimedPosition(t *testing.T) {
	// "шаг цены" matches inside both headers; with position 0 claimed the
	// broader column must fall through to position 1.
	headers := []string{"стоимость шага цены", "шаг цены"}
	col := NewColumn("tick_size", "шаг", "цены")

	pos, err := col.matchIn(headers, map[int]string{0: "tick_value"})
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
}

func TestMatchInAmbiguousWhenAllPositionsTaken(t *testing.T) {
	headers := []string{"шаг цены"}
	col := NewColumn("tick_size", "шаг", "цены")

	_, err := col.matchIn(headers, map[int]string{0: "tick_value"})
	assert.ErrorIs(t, err, ErrColumnAmbiguous)
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "дата время", normalizeText(" Дата /время "))
	assert.Equal(t, "ставка %", normalizeText("Ставка, %"))
	assert.Equal(t, "isin", normalizeText("ISIN:"))
}
