package config

import (
	"encoding/json"
	"sync/atomic"

	"github.com/nacos-group/nacos-sdk-go/v2/clients"
	"github.com/nacos-group/nacos-sdk-go/v2/common/constant"
	"github.com/nacos-group/nacos-sdk-go/v2/vo"

	"dungeonhub/internal/obslog"
)

// Watcher holds the active AppConfig behind an atomic pointer so handlers
// can read the current config without locking, while a background Nacos
// listener swaps it whole on every change. Absent a reachable Nacos
// server the watcher simply never swaps past NewWatcher's initial value —
// dynamic reload is an enrichment, not a dependency for correctness.
type Watcher struct {
	current atomic.Pointer[AppConfig]
}

func NewWatcher(initial *AppConfig) *Watcher {
	w := &Watcher{}
	w.current.Store(initial)
	return w
}

func (w *Watcher) Current() *AppConfig {
	return w.current.Load()
}

// NacosSource points at a Nacos config entry carrying a JSON-encoded
// AppConfig payload.
type NacosSource struct {
	Host    string
	Port    uint64
	DataID  string
	Group   string
	Timeout uint64
}

// StartNacosWatch connects to Nacos, applies the current value once, then
// listens for changes and swaps Watcher.current on every update. Returns
// immediately; all work happens in a background goroutine.
func (w *Watcher) StartNacosWatch(src NacosSource) error {
	serverConfigs := []constant.ServerConfig{
		*constant.NewServerConfig(src.Host, src.Port),
	}
	clientConfig := *constant.NewClientConfig(
		constant.WithTimeoutMs(src.Timeout),
		constant.WithNamespaceId(""),
		constant.WithNotLoadCacheAtStart(true),
	)

	client, err := clients.NewConfigClient(vo.NacosClientParam{
		ClientConfig:  &clientConfig,
		ServerConfigs: serverConfigs,
	})
	if err != nil {
		return err
	}

	content, err := client.GetConfig(vo.ConfigParam{DataId: src.DataID, Group: src.Group})
	if err != nil {
		return err
	}
	if content != "" {
		w.apply(content)
	}

	return client.ListenConfig(vo.ConfigParam{
		DataId: src.DataID,
		Group:  src.Group,
		OnChange: func(namespace, group, dataId, data string) {
			w.apply(data)
		},
	})
}

func (w *Watcher) apply(raw string) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		obslog.Warn("config_reload_failed", "nacos payload is not valid JSON", obslog.Reason(err.Error()))
		return
	}
	next, err := Decode(payload)
	if err != nil {
		obslog.Warn("config_reload_failed", "decode failed", obslog.Reason(err.Error()))
		return
	}
	w.current.Store(next)
	obslog.Info("config_reloaded", "applied new config from nacos")
}
