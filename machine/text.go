package machine

const (
	TEXT_CAPACITY = 255 // Default text register capacity, in bytes.
)

// Text is the bounded string register. A zero Text has a capacity of
// TEXT_CAPACITY.
type Text struct {
	Data []byte

	capacity int
}

// NewText returns an empty text register with the given capacity.
func NewText(capacity int) *Text {
	return &Text{capacity: capacity}
}

func (t *Text) Capacity() int {
	if t.capacity <= 0 {
		return TEXT_CAPACITY
	}
	return t.capacity
}

func (t *Text) Len() int {
	return len(t.Data)
}

func (t *Text) Left() int {
	return t.Capacity() - len(t.Data)
}

// Append adds data at the end, all or nothing.
func (t *Text) Append(data ...byte) (err error) {
	if len(data) > t.Left() {
		err = ErrTextOverflow
		return
	}
	t.Data = append(t.Data, data...)
	return
}

// Replace the contents with data, all or nothing.
func (t *Text) Replace(data []byte) (err error) {
	if len(data) > t.Capacity() {
		err = ErrTextOverflow
		return
	}
	t.Data = append(t.Data[:0], data...)
	return
}

// Truncate removes the last n bytes.
func (t *Text) Truncate(n int) (err error) {
	if n < 0 || n > len(t.Data) {
		err = ErrTextIndex
		return
	}
	t.Data = t.Data[:len(t.Data)-n]
	return
}

// Get the byte at index.
func (t *Text) Get(index int) (value byte, err error) {
	if index < 0 || index >= len(t.Data) {
		err = ErrTextIndex
		return
	}
	value = t.Data[index]
	return
}

// Set the byte at index. The index must already be in use.
func (t *Text) Set(index int, value byte) (err error) {
	if index < 0 || index >= len(t.Data) {
		err = ErrTextIndex
		return
	}
	t.Data[index] = value
	return
}

func (t *Text) Clear() {
	t.Data = t.Data[:0]
}

func (t *Text) String() string {
	return string(t.Data)
}
