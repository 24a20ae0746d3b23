/*
Package domain holds the values exchanged between the host and its frontend.

There is no mutable state here: the initial data and the submission reply are
created at startup and served as-is for the lifetime of the process.
*/
package domain
