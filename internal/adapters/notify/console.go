package notify

// console.go — Replier de consola para el modo dry-run.
//
// En vez de postear en X, imprime cada respuesta como una tabla con el
// tweet al que contesta. Permite probar el bot entero (comandos, ledger,
// ejecución mock) sin credenciales de X.

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Replier escribiendo a un io.Writer.
type Console struct {
	out io.Writer
}

// NewConsole crea un replier que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un replier para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Reply imprime la respuesta en vez de postearla.
func (c *Console) Reply(_ context.Context, tweetID, text string) error {
	fmt.Fprintf(c.out, "\n[%s] reply → %s\n", time.Now().Format("15:04:05"), tweetID)

	table := tablewriter.NewWriter(c.out)
	table.Header("line", "text")
	for i, line := range strings.Split(text, "\n") {
		table.Append(fmt.Sprintf("%d", i+1), line)
	}
	table.Render()
	return nil
}
