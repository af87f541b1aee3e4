package usecase

import "sync"

// changeNotifier は「変わった」ことだけを購読者に知らせる。
// チャネルは1件バッファなので、読み遅れても最後の通知は残る。
type changeNotifier struct {
	mu   sync.Mutex
	next uint64
	subs map[uint64]chan struct{}
}

// Subscribe は通知チャネルと購読解除の関数を返す。
func (n *changeNotifier) Subscribe() (<-chan struct{}, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.subs == nil {
		n.subs = make(map[uint64]chan struct{})
	}
	n.next++
	id := n.next
	ch := make(chan struct{}, 1)
	n.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
		})
	}
}

func (n *changeNotifier) notify() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		signal(ch)
	}
}

// signal は詰まらずに1件だけ入れる
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
