package storage

// PrefixDB namespaces a Database under a fixed key prefix so several
// contract instances can share one physical store without slot collisions.
// Close is a no-op; the owner of the underlying database closes it.
type PrefixDB struct {
	db     Database
	prefix []byte
}

// NewPrefixDB wraps db under prefix. The prefix is copied.
func NewPrefixDB(db Database, prefix []byte) *PrefixDB {
	p := make([]byte, len(prefix))
	copy(p, prefix)
	return &PrefixDB{db: db, prefix: p}
}

func (p *PrefixDB) key(key []byte) []byte {
	out := make([]byte, 0, len(p.prefix)+len(key))
	out = append(out, p.prefix...)
	return append(out, key...)
}

func (p *PrefixDB) Get(key []byte) ([]byte, error) {
	return p.db.Get(p.key(key))
}

func (p *PrefixDB) Put(key []byte, value []byte) error {
	return p.db.Put(p.key(key), value)
}

func (p *PrefixDB) Has(key []byte) (bool, error) {
	return p.db.Has(p.key(key))
}

func (p *PrefixDB) Close() error {
	return nil
}
