package intesa

import (
	"errors"
	"testing"
	"time"

	"github.com/isparser/isparser/extractor/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type batchRecorder struct {
	pages   []int
	batches [][]common.Movement
}

func (r *batchRecorder) add(page int, movements []common.Movement) {
	r.pages = append(r.pages, page)
	r.batches = append(r.batches, movements)
}

func TestExtract_TwoPageStatement(t *testing.T) {
	b := newTestBuilder(t)
	pages := common.PagesFromText(
		"Estratto conto\nDettaglio movimenti del conto corrente\nData contabile Data valuta Descrizione",
		"01.03.2024 01.03.2024 Bonifico a Vostro favore disposto da ACME 150,00\nSaldo finale al 31.03.2024",
	)

	rec := &batchRecorder{}
	rng, err := Extract(pages, b, rec.add)
	require.NoError(t, err)

	assert.Equal(t, PageRange{Start: 0, End: 1}, rng)
	assert.Equal(t, []int{0, 1}, rec.pages)
	assert.Empty(t, rec.batches[0])
	require.Len(t, rec.batches[1], 1)

	m := rec.batches[1][0]
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), m.Date)
	assert.Equal(t, "Bonifico a Vostro favore disposto da ACME", m.Description)
	assert.Equal(t, "150", m.Amount.String())
	assert.Empty(t, m.Tags)
}

func TestExtract_SkipsPagesOutsideRange(t *testing.T) {
	b := newTestBuilder(t)
	pages := common.PagesFromText(
		"01.01.2024 01.01.2024 Riepilogo precedente 99,00",
		"Dettaglio movimenti del conto corrente\n02.03.2024 02.03.2024 Pagamento POS 10,00",
		"03.03.2024 03.03.2024 Pagamento POS 20,00\nSaldo finale al 31.03.2024",
		"04.04.2024 04.04.2024 Informativa 1,00",
	)

	rec := &batchRecorder{}
	_, err := Extract(pages, b, rec.add)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, rec.pages)
	require.Len(t, rec.batches[0], 1)
	require.Len(t, rec.batches[1], 1)
	assert.Equal(t, "-10", rec.batches[0][0].Amount.String())
	assert.Equal(t, "-20", rec.batches[1][0].Amount.String())
}

func TestExtract_ReadsOnlyBetweenMarkers(t *testing.T) {
	b := newTestBuilder(t)
	pages := common.PagesFromText(
		"28.02.2024 28.02.2024 Saldo iniziale 1.000,00\n" +
			"Dettaglio movimenti del conto corrente\n" +
			"01.03.2024 01.03.2024 Pagamento POS 10,00\n" +
			"Saldo finale al 31.03.2024\n" +
			"31.03.2024 31.03.2024 Interessi riepilogo 0,10",
	)

	rec := &batchRecorder{}
	_, err := Extract(pages, b, rec.add)
	require.NoError(t, err)

	require.Len(t, rec.batches, 1)
	require.Len(t, rec.batches[0], 1)
	assert.Equal(t, "Pagamento POS", rec.batches[0][0].Description)
}

func TestExtract_PagesNotFound(t *testing.T) {
	b := newTestBuilder(t)
	pages := common.PagesFromText("01.03.2024 01.03.2024 Pagamento POS 10,00")

	called := false
	_, err := Extract(pages, b, func(int, []common.Movement) { called = true })

	var notFound *PagesNotFoundError
	assert.True(t, errors.As(err, &notFound))
	assert.False(t, called)
}

func TestExtract_StopsOnParseError(t *testing.T) {
	b := newTestBuilder(t)
	pages := common.PagesFromText(
		"Dettaglio movimenti del conto corrente\n01.03.2024 01.03.2024 Pagamento POS 1,2,3",
		"02.03.2024 02.03.2024 Pagamento POS 10,00\nSaldo finale al 31.03.2024",
	)

	rec := &batchRecorder{}
	_, err := Extract(pages, b, rec.add)

	var parseErr *common.ParseError
	assert.True(t, errors.As(err, &parseErr))
	assert.Empty(t, rec.pages)
}

func TestExtractPage_NoiseAndContinuation(t *testing.T) {
	b := newTestBuilder(t, "groceries=Pagamento POS CONAD")
	text := "01.03.2024 01.03.2024 Pagamento POS 12,50\n" +
		"CONAD\n" +
		"Pagina 3 di 10\n" +
		"Totali 12,50"

	movements, err := ExtractPage(text, b)
	require.NoError(t, err)

	require.Len(t, movements, 1)
	assert.Equal(t, "Pagamento POS CONAD", movements[0].Description)
	assert.Equal(t, []string{"groceries"}, movements[0].Tags)
}
