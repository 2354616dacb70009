// Package jail_bot Discord 关押机器人：斜杠命令、到期释放、状态消息和只读查询接口
// @title Jail Bot API
// @version 1.0
// @description 关押记录的只读查询接口（生效中的关押、前科、审计日志）
// @description
// @description ## 业务状态码说明
// @description | Code | 说明 |
// @description |------|------|
// @description | 0 | 成功 |
// @description | 10001 | 参数错误 |
// @description | 10004 | Token 无效 |
// @description | 99999 | 内部错误 |
// @description
// @description ## 响应格式
// @description 所有接口统一返回格式：
// @description ```json
// @description {
// @description   "code": 0,
// @description   "msg": "success",
// @description   "data": {}
// @description }
// @description ```
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:8080
// @BasePath /api/v1/jail
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 格式：Bearer <token>；未配置 API_TOKEN 时不校验
//
// @securityDefinitions.apikey QueryToken
// @in query
// @name token
// @description 无法传 header 时使用
package jail_bot
