// Package widgets models freely placed home-screen widgets.
//
// A Placement's position is kept in screen fractions and its size in grid
// cells, so a layout survives a change of display resolution. The Engine
// applies drag gestures (move, resize from any edge, z-order changes) and
// persists the layout as the {"widgets":[...]} document held by the widgets
// store.
package widgets
