// Package stanza 提供 Archipel 存储命名空间下 IQ stanza 的编解码
//
// 请求格式：
//
//	<iq type="set" id="42" from="admin@host/ui" to="hypervisor@host/agent">
//	    <query xmlns="archipel:storage">
//	        <archipel action="pooldefine" build="true">
//	            <pool type="dir"><name>scratch</name><target><path>/srv/scratch</path></target></pool>
//	        </archipel>
//	    </query>
//	</iq>
//
// 成功响应的 type 为 result，id 原样返回，from/to 互换，负载放在 query 元素中。
// 错误响应的 type 为 error，原样附带请求的 query，并附加：
//
//	<error type="cancel" code="-11004"><text xmlns="archipel:error:generic">message</text></error>
package stanza
