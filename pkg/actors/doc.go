/*
Package actors provides the roles that propose actions during randomization.

Every actor draws from the *rand.Rand it was built with. The simulation manager hands
all of its actors the same source, so one seed reproduces identity selection, actor
selection and every parameter an actor picks.

Actors keep whatever memory they need to stay legal. A User, for example, never
proposes a withdrawal before it has proposed a deposit.
*/
package actors
