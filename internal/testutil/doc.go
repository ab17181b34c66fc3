// Package testutil provides scripted randomness and fake collaborators shared
// by the decision engine's tests.
package testutil
