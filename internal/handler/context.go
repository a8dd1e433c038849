package handler

type ContextKey string

var (
	RoleCtxKey    ContextKey = "role"
	SubCtxKey     ContextKey = "sub"
	RegionCtx     ContextKey = "region"
	TourCtx       ContextKey = "tour"
	AttractionCtx ContextKey = "attraction"
)
