package cache

// lruNode links one idle key into the idle list.
type lruNode[K comparable] struct {
	key        K
	prev, next *lruNode[K]
}

// lruList orders idle keys from most recently released (head) to least
// recently released (tail). It is not synchronized.
type lruList[K comparable] struct {
	head, tail *lruNode[K]
	len        int
}

func (l *lruList[K]) pushFront(key K) *lruNode[K] {
	n := &lruNode[K]{key: key, next: l.head}
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.len++
	return n
}

func (l *lruList[K]) remove(n *lruNode[K]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
	l.len--
}

// oldest returns the least recently released node, or nil.
func (l *lruList[K]) oldest() *lruNode[K] { return l.tail }

func (l *lruList[K]) clear() {
	l.head, l.tail, l.len = nil, nil, 0
}
