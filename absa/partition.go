package absa

// Partition names
const (
	Train = "train"
	Dev   = "dev"
	Test  = "test"
)

// PartitionNames returns the partition names in iteration order.
func PartitionNames() []string {
	return []string{Train, Dev, Test}
}

// Partition is an ordered collection that may be absent. An absent partition
// means the corpus has no such data, which is not the same as an empty one.
type Partition[T any] struct {
	items   []T
	present bool
}

// Present returns a present partition holding items. A nil slice gives an
// empty, present partition.
func Present[T any](items []T) Partition[T] {
	if items == nil {
		items = []T{}
	}
	return Partition[T]{items: items, present: true}
}

// Absent returns the absence marker.
func Absent[T any]() Partition[T] {
	return Partition[T]{}
}

func (p Partition[T]) IsPresent() bool {
	return p.present
}

// Items returns the elements of the partition, nil if absent.
func (p Partition[T]) Items() []T {
	return p.items
}

func (p Partition[T]) Len() int {
	return len(p.items)
}

// Partitions groups the train, dev and test partitions of a dataset.
type Partitions[T any] struct {
	Train Partition[T]
	Dev   Partition[T]
	Test  Partition[T]
}

// Get returns the partition by name. Unknown names return an absent
// partition.
func (p Partitions[T]) Get(name string) Partition[T] {
	switch name {
	case Train:
		return p.Train
	case Dev:
		return p.Dev
	case Test:
		return p.Test
	}
	return Absent[T]()
}

// With returns a copy of p with the named partition replaced.
func (p Partitions[T]) With(name string, part Partition[T]) Partitions[T] {
	switch name {
	case Train:
		p.Train = part
	case Dev:
		p.Dev = part
	case Test:
		p.Test = part
	}
	return p
}

// Each calls fn for every present partition, in train, dev, test order.
func (p Partitions[T]) Each(fn func(name string, items []T)) {
	for _, name := range PartitionNames() {
		part := p.Get(name)
		if !part.IsPresent() {
			continue
		}
		fn(name, part.Items())
	}
}

// Map transforms every present partition with fn, keeping absent ones absent.
func Map[T, U any](p Partitions[T], fn func(name string, items []T) ([]U, error)) (Partitions[U], error) {
	var out Partitions[U]
	for _, name := range PartitionNames() {
		part := p.Get(name)
		if !part.IsPresent() {
			continue
		}
		items, err := fn(name, part.Items())
		if err != nil {
			return Partitions[U]{}, err
		}
		out = out.With(name, Present(items))
	}
	return out, nil
}
