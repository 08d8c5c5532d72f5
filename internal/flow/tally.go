package flow

// 确认计分（degradation-aware）：
// 当某个数据源被显式标记为不可用时，它名下的确认项同时从分子与分母剔除，
// 任何一方都不会因为缺数据而被记负分。9 分制退化为 5 分制属于正常运行。

// Item 单个确认项。Source 标注其依赖的数据源。
type Item struct {
	Name   string `json:"name"`
	Source string `json:"source,omitempty"`
	Passed bool   `json:"passed"`
}

// Tally 一次评估内的确认清单。
type Tally struct {
	items       []Item
	unavailable map[string]bool
}

func NewTally() *Tally {
	return &Tally{unavailable: make(map[string]bool)}
}

// Add 追加一个确认项。source 为空表示不依赖外部数据源。
func (t *Tally) Add(name, source string, passed bool) {
	if t == nil {
		return
	}
	t.items = append(t.items, Item{Name: name, Source: source, Passed: passed})
}

// MarkUnavailable 声明某数据源不可用，其名下所有项退出计分。
func (t *Tally) MarkUnavailable(source string) {
	if t == nil || source == "" {
		return
	}
	t.unavailable[source] = true
}

// Items 返回参与计分的项（不可用来源的项已剔除）。
func (t *Tally) Items() []Item {
	if t == nil {
		return nil
	}
	out := make([]Item, 0, len(t.items))
	for _, it := range t.items {
		if it.Source != "" && t.unavailable[it.Source] {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Score 返回 (通过数, 总数)。总数只含可用来源的项。
func (t *Tally) Score() (passed, total int) {
	for _, it := range t.Items() {
		total++
		if it.Passed {
			passed++
		}
	}
	return passed, total
}
