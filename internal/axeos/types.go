package axeos

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// SystemInfo mirrors the payload returned by /api/system/info.
//
// Electrical values are reported in device units: power in watts, voltage and
// core voltages in millivolts, current in milliamps. Keys the struct does not
// name are kept in Extra so they survive a decode/encode round trip.
type SystemInfo struct {
	Power             float64 `json:"power"`
	Voltage           float64 `json:"voltage"`
	Current           float64 `json:"current"`
	CoreVoltage       float64 `json:"coreVoltage"`
	CoreVoltageActual float64 `json:"coreVoltageActual"`

	Temp            float64 `json:"temp"`
	VRTemp          float64 `json:"vrTemp"`
	HashRate        float64 `json:"hashRate"`
	BestDiff        string  `json:"bestDiff"`
	BestSessionDiff string  `json:"bestSessionDiff"`
	Frequency       float64 `json:"frequency"`
	FanSpeed        float64 `json:"fanspeed"`
	FanRPM          float64 `json:"fanrpm"`
	SharesAccepted  int64   `json:"sharesAccepted"`
	SharesRejected  int64   `json:"sharesRejected"`
	UptimeSeconds   int64   `json:"uptimeSeconds"`
	FreeHeap        int64   `json:"freeHeap"`

	Hostname     string `json:"hostname"`
	SSID         string `json:"ssid"`
	WifiStatus   string `json:"wifiStatus"`
	ASICModel    string `json:"ASICModel"`
	StratumURL   string `json:"stratumURL"`
	StratumPort  int    `json:"stratumPort"`
	StratumUser  string `json:"stratumUser"`
	Version      string `json:"version"`
	BoardVersion string `json:"boardVersion"`

	Extra map[string]json.RawMessage `json:"-"`
}

type systemInfoFields SystemInfo

// UnmarshalJSON decodes the named fields and stashes the rest in Extra.
func (s *SystemInfo) UnmarshalJSON(data []byte) error {
	var named systemInfoFields
	if err := json.Unmarshal(data, &named); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	known := knownKeys()
	for k := range all {
		if _, ok := known[k]; ok {
			delete(all, k)
		}
	}
	*s = SystemInfo(named)
	if len(all) > 0 {
		s.Extra = all
	}
	return nil
}

// MarshalJSON writes the named fields followed by Extra.
func (s SystemInfo) MarshalJSON() ([]byte, error) {
	named, err := json.Marshal(systemInfoFields(s))
	if err != nil {
		return nil, err
	}
	if len(s.Extra) == 0 {
		return named, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(named, &merged); err != nil {
		return nil, err
	}
	for k, v := range s.Extra {
		if _, taken := merged[k]; !taken {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

var (
	knownOnce sync.Once
	known     map[string]struct{}
)

func knownKeys() map[string]struct{} {
	knownOnce.Do(func() {
		known = make(map[string]struct{})
		t := reflect.TypeOf(systemInfoFields{})
		for i := 0; i < t.NumField(); i++ {
			name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
			if name != "" && name != "-" {
				known[name] = struct{}{}
			}
		}
	})
	return known
}
