package output

import (
	"encoding/json"

	"github.com/mcgo/investment-calculator/internal/domain"
)

// JSONFormatter serializes the engine output as pretty-printed JSON.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(results *domain.EngineOutput) ([]byte, error) {
	return json.MarshalIndent(results, "", "  ")
}
