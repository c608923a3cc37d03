// Package replies generates answers locally when no language model is
// available: safe arithmetic, short summaries and task lists, with a
// capability notice for everything else.
package replies
