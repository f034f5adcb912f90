// Package chat defines the domain model shared by every parley component:
// users, groups, messages, and the JSON frames exchanged with the chat
// backend over the realtime connection.
//
// Workflow states are closed enums. Decoding an unknown state is an error,
// so a Message that made it through DecodeFrame only ever carries states
// the UI knows how to render.
package chat
