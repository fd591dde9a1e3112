// Package catalog отдаёт статический каталог тортов для формы заказа.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/vladislavdragonenkov/bakery/internal/metrics"
)

const reloadDebounce = 200 * time.Millisecond

// Size — вариант размера торта с ценой в иенах.
type Size struct {
	Label string `yaml:"label" json:"label"`
	Price int    `yaml:"price" json:"price"`
}

// Cake — позиция каталога.
type Cake struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description,omitempty"`
	Sizes       []Size `yaml:"sizes" json:"sizes"`
}

type file struct {
	Cakes []Cake `yaml:"cakes"`
}

// DefaultCakes используется, если файл каталога отсутствует.
var DefaultCakes = []Cake{
	{Name: "ショートケーキ", Sizes: []Size{{Label: "4号", Price: 3200}, {Label: "5号", Price: 4200}, {Label: "6号", Price: 5200}}},
	{Name: "チーズケーキ", Sizes: []Size{{Label: "4号", Price: 3000}, {Label: "5号", Price: 4000}}},
	{Name: "チョコケーキ", Sizes: []Size{{Label: "4号", Price: 3400}, {Label: "5号", Price: 4400}}},
	{Name: "いちごタルト", Sizes: []Size{{Label: "5号", Price: 4600}, {Label: "6号", Price: 5600}}},
}

// Catalog держит текущий каталог в памяти и перечитывает его при изменении файла.
type Catalog struct {
	path    string
	logger  *log.Entry
	metrics *metrics.OrderMetrics

	mu    sync.RWMutex
	cakes []Cake
}

// Load читает каталог из YAML. Отсутствующий файл не ошибка: отдаётся DefaultCakes.
func Load(path string, logger *log.Entry, m *metrics.OrderMetrics) (*Catalog, error) {
	if logger == nil {
		logger = log.WithField("component", "catalog")
	}
	c := &Catalog{path: path, logger: logger, metrics: m}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Cakes возвращает копию текущего каталога.
func (c *Catalog) Cakes() []Cake {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Cake, len(c.cakes))
	for i, cake := range c.cakes {
		out[i] = cake
		out[i].Sizes = append([]Size(nil), cake.Sizes...)
	}
	return out
}

// Reload перечитывает файл. При ошибке разбора прежний каталог сохраняется.
func (c *Catalog) Reload() error {
	cakes, err := readFile(c.path)
	c.metrics.RecordCatalogReload(err)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.cakes = cakes
	c.mu.Unlock()

	c.logger.WithFields(log.Fields{"path": c.path, "cakes": len(cakes)}).Debug("каталог загружен")
	return nil
}

func readFile(path string) ([]Cake, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultCakes, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	for i, cake := range f.Cakes {
		if cake.Name == "" {
			return nil, fmt.Errorf("parse catalog %s: cakes[%d] has no name", path, i)
		}
	}
	if f.Cakes == nil {
		f.Cakes = []Cake{}
	}
	return f.Cakes, nil
}

// Watch перечитывает каталог при изменении файла, пока жив ctx.
// Следит за каталогом-родителем: редакторы часто заменяют файл через rename.
func (c *Catalog) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(c.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	c.logger.WithField("path", c.path).Info("слежение за каталогом запущено")

	target := filepath.Clean(c.path)
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			// Несколько событий подряд от одного сохранения схлопываются.
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			if err := c.Reload(); err != nil {
				c.logger.WithError(err).Warn("не удалось перечитать каталог, оставлен прежний")
			} else {
				c.logger.Info("каталог перечитан")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.WithError(err).Warn("ошибка наблюдения за каталогом")
		}
	}
}
