// Package response 实现了协议响应信封的组装。
// 本文件实现了集合响应的分页元数据计算。
package response

// Pagination 表示集合响应的分页元数据。
// 所有字段由 NewPagination 一次性计算得出，序列化后挂载在 meta.pagination 下。
type Pagination struct {
	// CurrentPage 是当前页码（从 1 开始）
	CurrentPage int `json:"currentPage"`
	// PageSize 是每页记录数
	PageSize int `json:"pageSize"`
	// TotalPages 是总页数（按页大小向上取整）
	TotalPages int `json:"totalPages"`
	// RecordsReturned 是当前页实际返回的记录数
	RecordsReturned int `json:"recordsReturned"`
	// FirstRecordIndex 是当前页首条记录的全局索引（从 0 开始）
	FirstRecordIndex int `json:"firstRecordIndex"`
	// LastRecordIndex 是当前页末条记录的全局索引
	LastRecordIndex int `json:"lastRecordIndex"`
	// TotalRecords 是记录总数
	TotalRecords int `json:"totalRecords"`
	// AllRecordsReturned 表示按请求的页大小，本页是否已覆盖剩余全部记录
	AllRecordsReturned bool `json:"allRecordsReturned"`
}

// NewPagination 根据记录总数、页大小和当前页码计算分页元数据。
// 页大小和页码的非法值被规范化为最小合法值。
//
// 计算规则:
//   - totalPages = ceil(totalRecords / pageSize)
//   - firstRecordIndex = (currentPage - 1) * pageSize
//   - recordsReturned = min(pageSize, totalRecords - firstRecordIndex)，下限为 0
//   - lastRecordIndex = firstRecordIndex + recordsReturned - 1
//   - allRecordsReturned 当且仅当本页覆盖到最后一条记录
//
// 参数:
//   - totalRecords: 记录总数
//   - pageSize: 每页记录数
//   - currentPage: 当前页码（从 1 开始）
//
// 返回:
//   - Pagination: 计算完成的分页元数据
func NewPagination(totalRecords, pageSize, currentPage int) Pagination {
	if totalRecords < 0 {
		totalRecords = 0
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if currentPage < 1 {
		currentPage = 1
	}

	totalPages := (totalRecords + pageSize - 1) / pageSize
	first := (currentPage - 1) * pageSize

	returned := totalRecords - first
	if returned < 0 {
		returned = 0
	}
	if returned > pageSize {
		returned = pageSize
	}

	return Pagination{
		CurrentPage:        currentPage,
		PageSize:           pageSize,
		TotalPages:         totalPages,
		RecordsReturned:    returned,
		FirstRecordIndex:   first,
		LastRecordIndex:    first + returned - 1,
		TotalRecords:       totalRecords,
		AllRecordsReturned: first+returned >= totalRecords,
	}
}
