// Package core provides a small, stable facade over tfcprobe's discovery and
// textfilecontent probe for external integrations. It re-exports a narrow API
// surface so other tools can depend on a stable import path without reaching
// into internal packages.
//
// Example:
//
//	res, err := core.Run(ctx, core.Object{
//		Path:     core.Spec{Value: "/etc/ssh"},
//		Filename: &core.Spec{Value: "sshd_config"},
//		Pattern:  `^Port\s+(\d+)`,
//	})
//	if err != nil { /* handle */ }
//	_ = core.MarshalItems(os.Stdout, res.Items)
package core
