package ecs

// CreateEntityEvent is published after a fresh entity is allocated.
type CreateEntityEvent struct{ Entity Entity }

// RemoveEntityEvent is published before an entity's components are torn
// down and the slot is freed; handlers observe the entity while it is
// still fully valid.
type RemoveEntityEvent struct{ Entity Entity }

// AddComponentEvent[T] is published after T has been constructed in place
// on Entity.
type AddComponentEvent[T any] struct{ Entity Entity }

// RemoveComponentEvent[T] is published before T is erased from Entity's
// pool; handlers observe the component's last value via Get.
type RemoveComponentEvent[T any] struct{ Entity Entity }
