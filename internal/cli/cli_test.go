package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda-rural/internal/app"
	"agenda-rural/internal/config"
	"agenda-rural/internal/logger"
	"agenda-rural/internal/model"
	"agenda-rural/internal/service"
)

func testOpener(t *testing.T) Opener {
	t.Helper()
	cfg := config.Config{
		LocalDBPath: filepath.Join(t.TempDir(), "cli.db"),
		GeminiModel: "gemini-test",
		Location:    time.UTC,
	}
	return func(ctx context.Context) (*app.Container, error) {
		return app.New(ctx, cfg, logger.Discard())
	}
}

func run(t *testing.T, open Opener, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(open, "test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(testContext(t))
	return out.String(), err
}

func seed(t *testing.T, open Opener, inputs ...model.TaskInput) {
	t.Helper()
	c, err := open(testContext(t))
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	for _, in := range inputs {
		_, err := c.Agenda.Create(testContext(t), in)
		require.NoError(t, err)
	}
}

func TestUpcoming_Empty(t *testing.T) {
	out, err := run(t, testOpener(t), "upcoming")
	require.NoError(t, err)
	assert.Contains(t, out, "Nenhuma tarefa")
}

func TestUpcoming_ListsTasksDueSoon(t *testing.T) {
	open := testOpener(t)
	soon := time.Now().UTC().AddDate(0, 0, 2).Format(model.DateLayout)
	late := time.Now().UTC().AddDate(0, 0, 30).Format(model.DateLayout)
	seed(t, open,
		model.TaskInput{Title: "Vacinar bezerros", Category: "animals", Recurrence: "none", SpecificDate: &soon},
		model.TaskInput{Title: "Trocar telhas", Category: "maintenance", Recurrence: "none", SpecificDate: &late},
	)

	out, err := run(t, open, "upcoming")
	require.NoError(t, err)
	assert.Contains(t, out, "Vacinar bezerros")
	assert.NotContains(t, out, "Trocar telhas")
}

func TestMonth(t *testing.T) {
	open := testOpener(t)
	date := "2024-03-20"
	ref := 2
	seed(t, open,
		model.TaskInput{Title: "Vermifugar", Category: "animals", Recurrence: "none", SpecificDate: &date},
		model.TaskInput{Title: "Plantar abóbora", Category: "planting", Recurrence: "none", MonthReference: &ref},
	)

	out, err := run(t, open, "month", "2024-03")
	require.NoError(t, err)
	assert.Contains(t, out, "Março de 2024")
	assert.Contains(t, out, "Plantar abóbora")
	assert.Contains(t, out, "  20\n")
	assert.Contains(t, out, "Vermifugar")

	_, err = run(t, open, "month", "03/2024")
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	out, err := run(t, testOpener(t), "report")
	require.NoError(t, err)
	assert.Contains(t, out, "Resumo da chácara")
	assert.NotContains(t, out, "<b>")
}

func TestAsk_WithoutKey(t *testing.T) {
	out, err := run(t, testOpener(t), "ask", "quando", "podar?")
	require.NoError(t, err)
	assert.Contains(t, out, service.AdviceMissingKeyMessage)
}

func TestLogAddAndList(t *testing.T) {
	open := testOpener(t)

	out, err := run(t, open, "log", "add", "--date", "2024-05-02", "Choveu", "20mm")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-05-02")

	_, err = run(t, open, "log", "add", "--date", "02/05/2024", "x")
	assert.Error(t, err)

	out, err = run(t, open, "log", "list", "-n", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-05-02  Choveu 20mm")
}

func TestLogList_Empty(t *testing.T) {
	out, err := run(t, testOpener(t), "log", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "vazio")
}
