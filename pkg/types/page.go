package types

const (
	NO_PAGING uint64 = 0

	DEFAULT_PAGE      uint64 = 1
	DEFAULT_PAGE_SIZE uint64 = 20
	MAX_PAGE_SIZE     uint64 = 100
)
