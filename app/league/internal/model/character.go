package model

// Stats 角色基础属性
type Stats struct {
	Speed             int `db:"speed" json:"speed"`
	GoalDetermination int `db:"goal_determination" json:"goalDetermination"`
	ShootPower        int `db:"shoot_power" json:"shootPower"`
	Defense           int `db:"defense" json:"defense"`
	Stamina           int `db:"stamina" json:"stamina"`
}

// Scale 按倍率缩放并向下取整
func (s Stats) Scale(factor float64) Stats {
	scale := func(v int) int { return int(float64(v) * factor) }
	return Stats{
		Speed:             scale(s.Speed),
		GoalDetermination: scale(s.GoalDetermination),
		ShootPower:        scale(s.ShootPower),
		Defense:           scale(s.Defense),
		Stamina:           scale(s.Stamina),
	}
}

// Character 角色图鉴，只读
type Character struct {
	CharacterID int64  `db:"character_id" json:"characterId"`
	Name        string `db:"name" json:"name"`
	Stats
}

// Ownership 账号持有某个角色的记录，同一 (UserID, CharacterID) 至多一条
type Ownership struct {
	CharacterListID int64 `db:"character_list_id" json:"characterListId"`
	UserID          int64 `db:"user_id" json:"userId"`
	CharacterID     int64 `db:"character_id" json:"characterId"`
	Quantity        int   `db:"quantity" json:"quantity"`
	IsFormation     bool  `db:"is_formation" json:"isFormation"`
	Level           int   `db:"level" json:"level"`
	Ceiling         int   `db:"ceiling" json:"ceiling"`
}

// NewOwnership 抽卡新获得角色的初始记录
func NewOwnership(userID, characterID int64) Ownership {
	return Ownership{
		UserID:      userID,
		CharacterID: characterID,
		Quantity:    1,
	}
}

// FormationMember 出场角色及其强化等级
type FormationMember struct {
	Character
	Level int `json:"level"`
}
