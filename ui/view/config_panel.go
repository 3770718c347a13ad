package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/scansurface-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel encapsulates the configuration form widgets and apply logic.
// It owns its widgets and writes back into *config.Config on ApplyChanges.
type ConfigPanel interface {
	Build(startRow int) (endRow int) // constructs widgets starting at startRow, returns next free row
	SetEditable(enabled bool)
	ApplyChanges() // parses widget text into underlying config and persists
}

type configPanel struct {
	cfg       *config.Config
	cfgPath   string
	logger    *slog.Logger
	onApplied func(*config.Config)
	applyBtn  *ButtonWidget
	widgets   map[string]*TextWidget // keyed by internal field id
}

// NewConfigPanel creates the view bound to cfg. onApplied receives a copy of
// the config after every successful apply.
func NewConfigPanel(cfg *config.Config, cfgPath string, logger *slog.Logger, onApplied func(*config.Config)) ConfigPanel {
	return &configPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, onApplied: onApplied, widgets: make(map[string]*TextWidget)}
}

func (v *configPanel) Build(startRow int) (row int) {
	row = startRow
	c := v.cfg
	if c == nil {
		return row
	}
	makeRow := func(id, label, value string) {
		lbl := Label(Txt(label), Anchor("w"))
		Grid(lbl, Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(16))
		Grid(w, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", value)
		v.widgets[id] = w
		row++
	}
	makeRow("trackingColor", "Tracking Color (#rrggbb)", c.TrackingColor)
	makeRow("trackingWidth", "Tracking Width Px", fmt.Sprintf("%.1f", c.TrackingWidth))
	makeRow("trackingMinDelayMs", "Tracking Delay Ms (restart)", fmt.Sprintf("%d", c.TrackingMinDelayMs))
	makeRow("idleMinDelayMs", "Idle Delay Ms (restart)", fmt.Sprintf("%d", c.IdleMinDelayMs))
	makeRow("displayWidth", "Display Width (restart)", fmt.Sprintf("%d", c.DisplayWidth))
	makeRow("displayHeight", "Display Height (restart)", fmt.Sprintf("%d", c.DisplayHeight))
	makeRow("historySize", "History Size", fmt.Sprintf("%d", c.HistorySize))
	makeRow("debug", "Debug (true/false)", fmt.Sprintf("%t", c.Debug))
	v.applyBtn = Button(Txt("Apply Changes"), Command(func() { v.ApplyChanges() }))
	Grid(v.applyBtn, Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return row
}

func (v *configPanel) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, w := range v.widgets {
		if w != nil {
			w.Configure(State(state))
		}
	}
	if v.applyBtn != nil {
		v.applyBtn.Configure(State(state))
	}
}

func (v *configPanel) text(w *TextWidget) string {
	if w == nil {
		return ""
	}
	parts := w.Get("1.0", END)
	return strings.Join(parts, "")
}

func (v *configPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	cfg := *v.cfg // copy
	assignFloat := func(id string, dst *float64) {
		w := v.widgets[id]
		if w == nil {
			return
		}
		if f, ok := parseFloatField(strings.TrimSpace(v.text(w))); ok {
			*dst = f
		}
	}
	assignInt := func(id string, dst *int) {
		w := v.widgets[id]
		if w == nil {
			return
		}
		if i, ok := parseIntField(strings.TrimSpace(v.text(w))); ok {
			*dst = i
		}
	}
	assignBool := func(id string, dst *bool) {
		w := v.widgets[id]
		if w == nil {
			return
		}
		if b, ok := parseBoolLoose(strings.TrimSpace(v.text(w))); ok {
			*dst = b
		}
	}
	assignFloat("trackingWidth", &cfg.TrackingWidth)
	assignInt("trackingMinDelayMs", &cfg.TrackingMinDelayMs)
	assignInt("idleMinDelayMs", &cfg.IdleMinDelayMs)
	assignInt("displayWidth", &cfg.DisplayWidth)
	assignInt("displayHeight", &cfg.DisplayHeight)
	assignInt("historySize", &cfg.HistorySize)
	assignBool("debug", &cfg.Debug)
	if w := v.widgets["trackingColor"]; w != nil {
		val := strings.TrimSpace(v.text(w))
		if _, err := config.ParseHexColor(val); err == nil {
			cfg.TrackingColor = val
		} else if v.logger != nil {
			v.logger.Warn("config tracking color rejected", "value", val, "error", err)
		}
	}
	if verr := cfg.Validate(); verr != nil {
		if v.logger != nil {
			v.logger.Warn("config validate", "error", verr)
		}
		return
	}
	*v.cfg = cfg
	if v.onApplied != nil {
		applied := cfg
		v.onApplied(&applied)
	}
	if err := v.cfg.Save(v.cfgPath); err != nil {
		if v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
	} else {
		if v.logger != nil {
			v.logger.Info("config saved", "path", v.cfgPath)
		}
	}
}

// parsing helpers (unexported)
func parseFloatField(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
func parseIntField(s string) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return i, true
}
func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on", "t":
		return true, true
	case "false", "0", "no", "n", "off", "f":
		return false, true
	default:
		return false, false
	}
}
