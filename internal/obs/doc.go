// Package obs builds the zap logger shared by goSession tools.
package obs
