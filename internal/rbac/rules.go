package rbac

// Default policy. Students operate on their own data; owner checks happen in
// the stores (queries are scoped by learner id), not here.
var RolePermissions = map[string][]string{
	"student": {
		"attention:record",
		"attention:view-own",
		"d2r:submit",
		"d2r:view-own",
		"evaluation:generate",
		"evaluation:submit",
		"evaluation:view-own",
		"recommendation:view-own",
		"recommendation:mark-seen",
		"profile:view-own",
		"catalog:view",
	},
	"teacher": {
		"catalog:view",
		"catalog:write",
		"attention:view-all",
		"d2r:view-all",
		"evaluation:view-all",
	},
	"admin": {
		"*", // everything
	},
}
