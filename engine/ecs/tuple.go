package ecs

// Get2 returns pointers to e's A and B components. e must have both; use
// TryGet2 when that is not guaranteed.
func Get2[A, B any](s *Store, e Entity) (*A, *B) {
	return Get[A](s, e), Get[B](s, e)
}

// Get3 returns pointers to e's A, B and C components.
func Get3[A, B, C any](s *Store, e Entity) (*A, *B, *C) {
	return Get[A](s, e), Get[B](s, e), Get[C](s, e)
}

// TryGet2 returns pointers to e's A and B components, nil for any e lacks.
func TryGet2[A, B any](s *Store, e Entity) (*A, *B) {
	return TryGet[A](s, e), TryGet[B](s, e)
}

// TryGet3 returns pointers to e's A, B and C components, nil for any e lacks.
func TryGet3[A, B, C any](s *Store, e Entity) (*A, *B, *C) {
	return TryGet[A](s, e), TryGet[B](s, e), TryGet[C](s, e)
}

// ClearType2 removes A and B from every entity that has either, fanning the
// bulk clear out into one call per type. The source this design is ported
// from has a bulk clear<T...>() that silently only clears the first type in
// the pack; this store always fans out explicitly instead.
func ClearType2[A, B any](s *Store) {
	ClearType[A](s)
	ClearType[B](s)
}

// ClearType3 removes A, B and C from every entity that has any of them.
func ClearType3[A, B, C any](s *Store) {
	ClearType[A](s)
	ClearType[B](s)
	ClearType[C](s)
}
