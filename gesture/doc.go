// Package gesture models the swipe dials of the launcher: action points placed
// at angles on concentric circles, their JSON persistence in the swipe store,
// and the slot allocator that keeps points on one dial at least a minimum
// angle apart.
package gesture
