package flows

// Deps groups flow dependency sets. The Manager builds this once at construction
// and delegates each method to the matching flow.
type Deps struct {
	Login   LoginDeps
	Current CurrentDeps
	Refresh RefreshDeps
	Logout  LogoutDeps
}
