package templates

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"ayu/internal/clock"
	"ayu/internal/game"
)

var gameTemplate = template.Must(template.New("game").Funcs(template.FuncMap{
	"cell":  cellClass,
	"label": func(i int) string { return string(rune('A' + i)) },
}).Parse(gameHTML))

const gameHTML = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>Ayu {{.ID}}</title>
<style>
.cell,.label{display:inline-block;width:1.6em;height:1.6em;text-align:center}
.white::after{content:"\25CB"}.black::after{content:"\25CF"}
</style></head>
<body>
<p id="status">{{.Status}}{{if .Clocks}} &middot; white {{index .Clocks 0}} &middot; black {{index .Clocks 1}}{{end}}</p>
<div id="board">
{{range .Rows}}<div class="row"><span class="label">{{.Label}}</span>{{range .Cells}}<span class="cell {{cell .}}"></span>{{end}}</div>
{{end}}<div class="row"><span class="label"></span>{{range $c, $row := .Rows}}<span class="label">{{label $c}}</span>{{end}}</div>
</div>
<pre id="history">{{.Log}}</pre>
</body>
</html>
`

type rowView struct {
	Label int
	Cells []game.Player
}

type gameView struct {
	ID     string
	Status string
	Clocks []string
	Rows   []rowView
	Log    string
}

// WriteGameHTML serves the game page for a snapshot, highest row on top.
func WriteGameHTML(w http.ResponseWriter, gameID string, st *game.State) {
	view := gameView{ID: gameID, Status: status(st)}
	for r := len(st.Fields) - 1; r >= 0; r-- {
		view.Rows = append(view.Rows, rowView{Label: r + 1, Cells: st.Fields[r]})
	}
	if st.TimeUsed != nil {
		for _, s := range st.TimeUsed {
			view.Clocks = append(view.Clocks, clock.Format(time.Duration(s*float64(time.Second))))
		}
	}
	var log bytes.Buffer
	_ = st.WriteLog(&log)
	view.Log = log.String()

	var out bytes.Buffer
	if err := gameTemplate.Execute(&out, view); err != nil {
		slog.Error("failed to render game page", "game", gameID, "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Bytes())
}

func status(st *game.State) string {
	switch st.NextPlayer {
	case game.White:
		return "White to move"
	case game.Black:
		return "Black to move"
	}
	return "Game over"
}

func cellClass(p game.Player) string {
	switch p {
	case game.White:
		return "white"
	case game.Black:
		return "black"
	}
	return "empty"
}
