// Package chat holds the types shared by the QuantumX server and clients:
// the request mode, the /chat wire format, the canned offline replies and
// the quick-action prompts.
package chat
