// Package anim implements keyframe sampling, playback state and pose blending.
//
// An Animation is immutable keyframe data that may be shared by any number of
// model instances. Each instance owns a Controller, which advances playback
// descriptors once per frame and writes the resulting pose into a scene.Graph
// through an Applier. Controllers, Appliers and pools are not safe for
// concurrent use.
package anim
