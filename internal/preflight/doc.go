// Package preflight provides readiness checks for the tools and paths mkvlang
// depends on.
//
// These checks run in two contexts:
//   - run, watch, and the root command call RequireTools before touching any
//     file, so a missing mkvmerge fails the whole invocation up front instead
//     of every file one by one.
//   - The CLI "mkvlang status" command uses RunAll and CheckSystemDeps to
//     display readiness.
package preflight
