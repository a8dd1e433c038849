package domain

import "time"

type CatalogEventType string

const (
	CatalogEventRegionCreated     CatalogEventType = "region_created"
	CatalogEventAttractionCreated CatalogEventType = "attraction_created"
	CatalogEventTourCreated       CatalogEventType = "tour_created"
	CatalogEventTourDeleted       CatalogEventType = "tour_deleted"
	CatalogEventLinkCreated       CatalogEventType = "link_created"
	CatalogEventLinkDeleted       CatalogEventType = "link_deleted"
	CatalogEventReloadRequested   CatalogEventType = "reload_requested"
)

// CatalogEvent 在目录数据发生变化时通过消息队列广播给所有实例
type CatalogEvent struct {
	Type       CatalogEventType `json:"type"`
	EntityID   string           `json:"entityID"`
	Origin     string           `json:"origin"` // 发出事件的实例 ID
	OccurredAt time.Time        `json:"occurredAt"`
}
