package config

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// TopLevel is the unconditional honorary tier: it carries no prestige
// requirement and always finishes at the national review stage.
const TopLevel = 15

// LevelRequirement gates a membership-class level. General is checked against
// the member's full prestige total, Regional against regional+national, and
// National against national alone. Officer names the final officer-review
// stage for the level.
type LevelRequirement struct {
	General  int64  `mapstructure:"general" json:"general"`
	Regional int64  `mapstructure:"regional" json:"regional"`
	National int64  `mapstructure:"national" json:"national"`
	Officer  string `mapstructure:"officer" json:"officer"`
}

// LevelTable maps a membership-class level to its requirement. Level 1 is
// implicit for all members and never appears here.
type LevelTable map[int]LevelRequirement

func DefaultLevelTable() LevelTable {
	return LevelTable{
		2:  {General: 10, Officer: "domain"},
		3:  {General: 25, Officer: "domain"},
		4:  {General: 45, Regional: 5, Officer: "domain"},
		5:  {General: 70, Regional: 10, Officer: "regional"},
		6:  {General: 100, Regional: 20, Officer: "regional"},
		7:  {General: 140, Regional: 30, National: 5, Officer: "regional"},
		8:  {General: 190, Regional: 45, National: 10, Officer: "regional"},
		9:  {General: 250, Regional: 60, National: 15, Officer: "national"},
		10: {General: 320, Regional: 80, National: 25, Officer: "national"},
		11: {General: 400, Regional: 105, National: 35, Officer: "national"},
		12: {General: 500, Regional: 135, National: 50, Officer: "national"},
		13: {General: 620, Regional: 170, National: 70, Officer: "national"},
		14: {General: 760, Regional: 210, National: 95, Officer: "national"},
		15: {Officer: "national"},
	}
}

// LevelTableHolder exposes the current level table and supports hot reload
// from a volume-mounted levels.yml.
type LevelTableHolder struct {
	current atomic.Value // holds LevelTable
}

func NewLevelTableHolder() (*LevelTableHolder, error) {
	v := viper.New()

	v.SetConfigName("levels")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/prestige/config")
	v.AddConfigPath("/etc/prestige")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PRESTIGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &LevelTableHolder{}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		holder.current.Store(DefaultLevelTable())
		return holder, nil
	}

	table, err := decodeLevelTable(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(table)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeLevelTable(v)
		if err != nil {
			log.Printf("[levels-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[levels-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticLevelTableHolder wraps a fixed table; used by tests and anywhere
// hot reload is not wanted.
func NewStaticLevelTableHolder(table LevelTable) *LevelTableHolder {
	holder := &LevelTableHolder{}
	holder.current.Store(table)
	return holder
}

func (h *LevelTableHolder) Get() LevelTable {
	return h.current.Load().(LevelTable)
}

func decodeLevelTable(v *viper.Viper) (LevelTable, error) {
	var raw map[string]LevelRequirement
	if err := v.UnmarshalKey("levels", &raw); err != nil {
		return nil, err
	}

	table := LevelTable{}
	for key, req := range raw {
		level, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("levels: invalid level key %q", key)
		}
		table[level] = req
	}
	if err := validateLevelTable(table); err != nil {
		return nil, err
	}
	return table, nil
}

func validateLevelTable(table LevelTable) error {
	if len(table) == 0 {
		return errors.New("levels cannot be empty")
	}
	for level, req := range table {
		if level < 2 {
			return fmt.Errorf("levels: level %d is below the requestable range", level)
		}
		switch strings.ToLower(req.Officer) {
		case "domain", "regional", "national":
		default:
			return fmt.Errorf("levels: level %d has invalid officer stage %q", level, req.Officer)
		}
		if req.General < 0 || req.Regional < 0 || req.National < 0 {
			return fmt.Errorf("levels: level %d has negative requirement", level)
		}
	}
	return nil
}
