// Package gizmo is the selection and transform manipulation core of a 2D
// scene editor built on [Ebitengine].
//
// Scene content is a tree of [Node] values, each carrying a decomposed
// affine transform (position, scale, rotation, skew, pivot) and a local
// content rectangle. The [Editor] owns the stage root, a [SelectionProxy]
// that groups the selected nodes into one manipulable object, the
// manipulation handlers that drive it, a [Camera], and a [ComponentStore]
// kept in sync with every committed change.
//
// # Quick start
//
//	editor, err := gizmo.NewEditor(gizmo.DefaultConfig(), nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	box := gizmo.NewShape("box", gizmo.Rect{Width: 80, Height: 40})
//	editor.Root().AddChild(box)
//	editor.Register(editor.Root())
//
//	type Game struct{ editor *gizmo.Editor }
//
//	func (g *Game) Update() error        { g.editor.Update(); return nil }
//	func (g *Game) Draw(s *ebiten.Image) { drawScene(s); g.editor.Draw(s) }
//
// # Selection
//
// Selecting nodes reparents them under the proxy node without moving them
// on screen. A single selected node hands its transform to the proxy
// verbatim; several nodes share a proxy whose pivot is the center of their
// combined bounds. Unselecting returns every node to its original parent
// and child index. [Reparent] performs the same world-preserving move for
// arbitrary nodes.
//
// # Handlers
//
// [TranslateHandler], [RotateHandler], [ResizeHandler] (one per [Anchor]),
// [SkewHandler] and [PivotHandler] share one [HandlingSession], so at most
// one of them drives the proxy at a time. Each pointer move recomputes the
// proxy transform from the snapshot taken at pointer-down and pushes the
// resulting node transforms to the store.
//
// # Store
//
// [MapStore] keeps components in memory; the ecs sub-package stores them in
// a [Donburi] world. Edits made by other systems arrive through
// ComponentStore.OnChange and end any manipulation in progress before the
// proxy is re-derived.
//
// # Configuration
//
// [LoadConfig] reads GIZMO_* environment variables (handle sizes, snapping
// steps, zoom limits) on top of [DefaultConfig].
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package gizmo
