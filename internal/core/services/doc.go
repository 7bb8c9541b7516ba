// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Adapters are injected at construction; services never read
// configuration or the environment themselves.
package services
