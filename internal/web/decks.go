package web

import (
	"net/http"

	"github.com/peterkuimelis/omen/internal/config"
	"github.com/peterkuimelis/omen/internal/deck"
	"gopkg.in/yaml.v3"
)

// deckFileYAML renders the session's cards, active then completed, as a
// config file that recreates the same ranks.
func deckFileYAML(snap deck.Snapshot, stale deck.StalePolicy, width float64) ([]byte, error) {
	all := snap.All()
	f := config.File{
		Ranks:           make([]int, len(all)),
		Layout:          snap.Layout.String(),
		StaleCompletion: stale.String(),
		ViewportWidth:   width,
	}
	for i, c := range all {
		f.Ranks[i] = c.Rank
	}
	return yaml.Marshal(f)
}

func (s *Server) handleDeckExport(w http.ResponseWriter, r *http.Request) {
	data, err := deckFileYAML(s.session.Snapshot(), s.session.StalePolicy(), s.viewportWidth(r))
	if err != nil {
		http.Error(w, "could not encode deck", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(data)
}
