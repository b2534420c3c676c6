package dto

// ── 宿舍模块 DTO ──

// CreateBuildingRequest 创建宿舍楼请求
type CreateBuildingRequest struct {
	Name        string `json:"name"        binding:"required,min=1,max=32"`
	Gender      string `json:"gender"      binding:"required,oneof=M F"`
	Description string `json:"description" binding:"omitempty,max=200"`
}

// UpdateBuildingRequest 更新宿舍楼请求
type UpdateBuildingRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=1,max=32"`
	Gender      *string `json:"gender"      binding:"omitempty,oneof=M F"`
	Description *string `json:"description" binding:"omitempty,max=200"`
}

// CreateRoomRequest 创建房间请求
type CreateRoomRequest struct {
	BuildingID  uint   `json:"building_id" binding:"required,min=1"`
	RoomNumber  string `json:"room_number" binding:"required,min=1,max=16"`
	Capacity    int    `json:"capacity"    binding:"required,min=1,max=12"`
	Description string `json:"description" binding:"omitempty,max=200"`
}

// UpdateRoomRequest 更新房间请求
type UpdateRoomRequest struct {
	RoomNumber  *string `json:"room_number" binding:"omitempty,min=1,max=16"`
	Capacity    *int    `json:"capacity"    binding:"omitempty,min=1,max=12"`
	Description *string `json:"description" binding:"omitempty,max=200"`
}

// AssignRoomRequest 分配住宿请求
type AssignRoomRequest struct {
	StudentID uint `json:"student_id" binding:"required,min=1"`
	RoomID    uint `json:"room_id"    binding:"required,min=1"`
}

// ChangeRoomRequest 调换宿舍请求
type ChangeRoomRequest struct {
	TargetRoomID uint `json:"target_room_id" binding:"required,min=1"`
}

// ListUnassignedStudentsRequest 按目标楼栋查询待分配学生
type ListUnassignedStudentsRequest struct {
	PaginationRequest
	BuildingID uint `form:"building_id" binding:"required,min=1"`
}

// BuildingResponse 宿舍楼响应（含实时统计）
type BuildingResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	Description string `json:"description,omitempty"`
	RoomCount   int    `json:"room_count"`
	Capacity    int    `json:"capacity"`  // 全楼床位数
	Occupied    int    `json:"occupied"`  // 在住人数
	CreatedAt   string `json:"created_at"`
}

// RoomResponse 房间响应（含实时占用）
type RoomResponse struct {
	ID          uint   `json:"id"`
	BuildingID  uint   `json:"building_id"`
	RoomNumber  string `json:"room_number"`
	Capacity    int    `json:"capacity"`
	Occupied    int    `json:"occupied"`
	Description string `json:"description,omitempty"`
}

// AssignmentResponse 住宿分配响应
type AssignmentResponse struct {
	ID           uint   `json:"id"`
	StudentID    uint   `json:"student_id"`
	StudentNo    string `json:"student_no,omitempty"`
	StudentName  string `json:"student_name,omitempty"`
	RoomID       uint   `json:"room_id"`
	RoomNumber   string `json:"room_number,omitempty"`
	BuildingName string `json:"building_name,omitempty"`
	Status       string `json:"status"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date,omitempty"`
}
