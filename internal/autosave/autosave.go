// Package autosave реализует координатор фонового сохранения документов:
// правки накапливаются и после паузы в наборе текста уходят одним
// частичным обновлением. Сохранения одного документа никогда не идут
// параллельно; курсор пользователя переживает внешние обновления.
package autosave

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/novawriterhq/novawriter/internal/lib/sl"
)

// Состояния черновика относительно сохранённой копии.
type State string

const (
	StateSaved   State = "saved"
	StateUnsaved State = "unsaved"
	StateSaving  State = "saving"
)

// Origin помечает источник пришедшего содержимого.
type Origin int

const (
	// OriginLocal — эхо собственного сохранения, игнорируется.
	OriginLocal Origin = iota
	// OriginExternal — содержимое изменил внешний источник
	// (другая вкладка, импорт), его нужно принять.
	OriginExternal
)

// Selection — границы выделения в тексте, в символах.
type Selection struct {
	From int
	To   int
}

// DefaultDebounce — пауза в наборе, после которой запускается сохранение.
const DefaultDebounce = 2 * time.Second

// SaveFunc записывает свежий снимок документа в хранилище.
type SaveFunc func(ctx context.Context, documentID, title, content string) error

// StateFunc уведомляет о смене состояния черновика, например индикатор
// «сохранено» в интерфейсе. Вызывается без внутренних блокировок.
type StateFunc func(documentID string, state State)

// Coordinator управляет черновиками открытых документов.
type Coordinator struct {
	save     SaveFunc
	onState  StateFunc
	debounce time.Duration
	log      *slog.Logger

	mu     sync.Mutex
	drafts map[string]*draft
	closed bool
	wg     sync.WaitGroup
}

// draft — состояние одного открытого документа.
type draft struct {
	state     State
	title     string
	content   string
	selection Selection
	timer     *time.Timer
	saving    bool
	dirty     bool // правки, пришедшие во время текущего сохранения
}

// Option настраивает координатор.
type Option func(*Coordinator)

// WithDebounce задаёт паузу набора.
func WithDebounce(d time.Duration) Option {
	return func(c *Coordinator) { c.debounce = d }
}

// WithStateFunc задаёт получателя смен состояния.
func WithStateFunc(fn StateFunc) Option {
	return func(c *Coordinator) { c.onState = fn }
}

// New создаёт координатор.
func New(save SaveFunc, log *slog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		save:     save,
		debounce: DefaultDebounce,
		log:      log,
		drafts:   make(map[string]*draft),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Track регистрирует документ, загруженный из хранилища.
// Его содержимое уже сохранено, черновик начинает в состоянии Saved.
func (c *Coordinator) Track(documentID, title, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.drafts[documentID] = &draft{state: StateSaved, title: title, content: content}
}

// Edit принимает локальную правку заголовка или текста: снимок
// запоминается, черновик становится Unsaved, отсчёт паузы начинается
// заново, так что серия быстрых правок сливается в одно сохранение.
// Новый документ регистрируется автоматически и сразу считается
// несохранённым.
func (c *Coordinator) Edit(documentID, title, content string, sel Selection) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	d, ok := c.drafts[documentID]
	if !ok {
		d = &draft{}
		c.drafts[documentID] = d
	}
	d.title = title
	d.content = content
	d.selection = sel
	changed := d.state != StateUnsaved
	d.state = StateUnsaved

	if d.saving {
		d.dirty = true
		c.mu.Unlock()
	} else {
		c.scheduleLocked(documentID, d)
		c.mu.Unlock()
	}
	if changed {
		c.notify(documentID, StateUnsaved)
	}
}

// ApplyServerContent принимает каноническое содержимое с сервера.
// Эхо собственного сохранения (OriginLocal) игнорируется, чтобы
// не затирать более свежие локальные правки. Внешнее содержимое
// принимается без смены состояния черновика, а границы выделения
// поджимаются под новую длину текста.
func (c *Coordinator) ApplyServerContent(documentID, content string, origin Origin) {
	if origin == OriginLocal {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	d, ok := c.drafts[documentID]
	if !ok {
		c.drafts[documentID] = &draft{state: StateSaved, content: content}
		return
	}
	d.content = content
	d.selection = clampSelection(d.selection, content)
}

// Selection возвращает отслеживаемые границы выделения.
func (c *Coordinator) Selection(documentID string) Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.drafts[documentID]; ok {
		return d.selection
	}
	return Selection{}
}

// State возвращает состояние черновика. Неизвестный документ
// считается сохранённым.
func (c *Coordinator) State(documentID string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.drafts[documentID]; ok {
		return d.state
	}
	return StateSaved
}

// Flush немедленно сохраняет несохранённый черновик, не дожидаясь паузы.
func (c *Coordinator) Flush(ctx context.Context, documentID string) error {
	const op = "autosave.Flush"

	c.mu.Lock()
	d, ok := c.drafts[documentID]
	if !ok || d.state != StateUnsaved || d.saving {
		c.mu.Unlock()
		return nil
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.state = StateSaving
	d.saving = true
	title, content := d.title, d.content
	c.mu.Unlock()
	c.notify(documentID, StateSaving)

	err := c.save(ctx, documentID, title, content)
	c.finishSave(documentID, d, err)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Forget снимает документ с учёта, отменяя отложенное сохранение.
func (c *Coordinator) Forget(documentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.drafts[documentID]; ok && d.timer != nil {
		d.timer.Stop()
	}
	delete(c.drafts, documentID)
}

// Close останавливает координатор: отложенные таймеры отменяются,
// идущие сохранения завершаются, их исход никого не уведомляет.
func (c *Coordinator) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	for _, d := range c.drafts {
		if d.timer != nil {
			d.timer.Stop()
			d.timer = nil
		}
	}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// scheduleLocked перезапускает отсчёт паузы. Вызывается под c.mu.
func (c *Coordinator) scheduleLocked(documentID string, d *draft) {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(c.debounce, func() {
		c.fire(documentID)
	})
}

// fire выполняет отложенное сохранение после истечения паузы.
func (c *Coordinator) fire(documentID string) {
	c.mu.Lock()
	d, ok := c.drafts[documentID]
	if !ok || c.closed || d.saving || d.state != StateUnsaved {
		c.mu.Unlock()
		return
	}
	d.state = StateSaving
	d.saving = true
	d.timer = nil
	title, content := d.title, d.content
	c.wg.Add(1)
	c.mu.Unlock()
	c.notify(documentID, StateSaving)

	go func() {
		defer c.wg.Done()
		err := c.save(context.Background(), documentID, title, content)
		c.finishSave(documentID, d, err)
	}()
}

// finishSave фиксирует исход сохранения. Ошибка оставляет черновик
// в Unsaved без автоматического повтора: следующая правка снова
// запустит отсчёт. Правки, накопленные за время сохранения,
// планируются новым отсчётом сразу после его завершения.
func (c *Coordinator) finishSave(documentID string, d *draft, err error) {
	c.mu.Lock()
	d.saving = false
	var next State
	switch {
	case err != nil:
		next = StateUnsaved
		d.dirty = false
		c.log.Error("autosave failed", slog.String("documentId", documentID), sl.Err(err))
	case d.dirty:
		next = StateUnsaved
		d.dirty = false
		if !c.closed {
			c.scheduleLocked(documentID, d)
		}
	default:
		next = StateSaved
	}
	d.state = next
	closed := c.closed
	c.mu.Unlock()

	if !closed {
		c.notify(documentID, next)
	}
}

// notify сообщает о смене состояния, если задан получатель.
func (c *Coordinator) notify(documentID string, state State) {
	if c.onState != nil {
		c.onState(documentID, state)
	}
}

// clampSelection поджимает границы выделения под длину текста в символах.
func clampSelection(sel Selection, content string) Selection {
	length := utf8.RuneCountInString(content)
	if sel.From > length {
		sel.From = length
	}
	if sel.To > length {
		sel.To = length
	}
	if sel.From < 0 {
		sel.From = 0
	}
	if sel.To < sel.From {
		sel.To = sel.From
	}
	return sel
}
