// Package ecs stores editor transforms in a Donburi world.
//
// [Store] implements gizmo.ComponentStore with one component type per
// transform field ([Position], [Scale], [Rotation], [Skew], [Pivot]) plus
// [NodeRef] linking the entity to its editor node. An entity only carries
// the components its node exposes, and the editor never writes the others.
//
// Edits made by other systems go through [Store.Edit], which publishes a
// [TransformChanged] event; [Store.Flush] delivers queued events to the
// editor, typically once per frame before Editor.Update.
//
// Usage:
//
//	world := donburi.NewWorld()
//	store := ecs.NewStore(world)
//	editor, err := gizmo.NewEditor(cfg, store)
//	store.Bind(node, gizmo.CompAll)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
